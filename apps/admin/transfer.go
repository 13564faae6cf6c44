package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/trezcool/darasa/core/school"
)

func (cli *commandLine) exportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON backup of every collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := cli.svc.Export(cmd.Context())
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return errors.Wrap(err, "encoding snapshot")
			}
			if output == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			if err = os.WriteFile(output, append(data, '\n'), 0o644); err != nil {
				return errors.Wrap(err, "writing backup")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "backup file (default: stdout)")
	return cmd
}

func (cli *commandLine) importCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the collections present in a JSON backup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := readSnapshot(input)
			if err != nil {
				return err
			}
			if snap.IsEmpty() {
				return errors.Errorf("%s: snapshot has no collections", input)
			}
			if err = cli.svc.Import(cmd.Context(), snap); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %s\n", input)
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "backup file")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func (cli *commandLine) clearCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Erase every record and reseed the subject catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				if !stdinIsTerminal() {
					return errNotConfirmed
				}
				fmt.Fprint(cmd.OutOrStdout(), "This erases every record. Type \"yes\" to continue: ")
				answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && answer == "" {
					return errAborted
				}
				if strings.TrimSpace(answer) != "yes" {
					return errAborted
				}
			}
			if err := cli.svc.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "store cleared")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "do not ask for confirmation")
	return cmd
}

func (cli *commandLine) diffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <a.json> <b.json>",
		Short: "Show a unified diff of two backups, ignoring when they were taken",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			diff, err := diffSnapshots(args[0], args[1])
			if err != nil {
				return err
			}
			if diff == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "no differences")
				return nil
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), diff)
			return err
		},
	}
}

func readSnapshot(path string) (school.Snapshot, error) {
	var snap school.Snapshot
	data, err := os.ReadFile(path)
	if err != nil {
		return snap, errors.Wrap(err, "reading backup")
	}
	if err = json.Unmarshal(data, &snap); err != nil {
		return snap, errors.Wrapf(err, "%s: decoding snapshot", path)
	}
	return snap, nil
}

func diffSnapshots(a, b string) (string, error) {
	var texts [2]string
	for i, path := range []string{a, b} {
		snap, err := readSnapshot(path)
		if err != nil {
			return "", err
		}
		text, err := normalize(snap)
		if err != nil {
			return "", err
		}
		texts[i] = text
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(texts[0]),
		B:        difflib.SplitLines(texts[1]),
		FromFile: a,
		ToFile:   b,
		Context:  3,
	})
}

// normalize renders a snapshot with rows in id order and without its export stamp.
func normalize(snap school.Snapshot) (string, error) {
	snap.ExportedAt = time.Time{}
	byID(snap.Classrooms, func(c school.Classroom) int { return c.ID })
	byID(snap.Students, func(s school.Student) int { return s.ID })
	byID(snap.Subjects, func(s school.Subject) int { return s.ID })
	byID(snap.Grades, func(g school.Grade) int { return g.ID })
	byID(snap.Schedule, func(s school.ScheduleSlot) int { return s.ID })
	byID(snap.Attendance, func(a school.Attendance) int { return a.ID })
	byID(snap.HealthChecks, func(h school.HealthCheck) int { return h.ID })
	byID(snap.Measurements, func(m school.Measurement) int { return m.ID })

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "encoding snapshot")
	}
	return string(data) + "\n", nil
}

func byID[T any](rows []T, id func(T) int) {
	sort.SliceStable(rows, func(i, j int) bool { return id(rows[i]) < id(rows[j]) })
}
