package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	. "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/services/logger"
	"github.com/trezcool/darasa/storage/database/memory"
	"github.com/trezcool/darasa/storage/database/sqlite"
)

type testApp struct {
	Server
	mem  *memdb.DB
	disk *sqlitedb.DB
}

func setup(t *testing.T, opts ...func(*Options)) testApp {
	mem, err := memdb.Open()
	require.NoError(t, err)
	disk, err := sqlitedb.Open(context.Background(), filepath.Join(t.TempDir(), "darasa.db"), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = disk.Close() })

	return testApp{
		Server: newServer(school.Backends{
			Ephemeral:  school.NewService(mem),
			Persistent: school.NewService(disk),
		}, opts...),
		mem:  mem,
		disk: disk,
	}
}

func newServer(backends school.Backends, opts ...func(*Options)) Server {
	conf := &core.Config{Env: "TEST", TestMode: true}
	validate, translator := core.NewValidator()
	options := &Options{TestMode: true, DisableReqLogs: true}
	for _, opt := range opts {
		opt(options)
	}
	return NewServer(options, &Deps{
		Backends:   backends,
		Logger:     logsvc.NewRollbarLogger(zap.NewNop(), conf),
		Validate:   validate,
		Translator: translator,
	})
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	desktop  bool
	wantCode int
	wantData []byte
}

func newRequest(method, path string, desktop bool, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if desktop {
		req.Header.Set(school.DesktopHeader, "true")
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func runHTTPTests(t *testing.T, app http.Handler, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newRequest(method, tt.path, tt.desktop, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func do(t *testing.T, app http.Handler, method, path string, body interface{}, desktop ...bool) *httptest.ResponseRecorder {
	t.Helper()
	var data []byte
	if body != nil {
		data = marchallObj(t, body)
	}
	req, rec := newRequest(method, path, len(desktop) > 0 && desktop[0], data)
	app.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
