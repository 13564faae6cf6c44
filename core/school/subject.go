package school

type Subject struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Code  string `json:"code"`
	Color string `json:"color"` // display hint
}

// DefaultSubjects is the catalog seeded into an empty store.
var DefaultSubjects = []Subject{
	{Name: "ภาษาไทย", Code: "TH", Color: "#3B82F6"},
	{Name: "คณิตศาสตร์", Code: "MATH", Color: "#10B981"},
	{Name: "วิทยาศาสตร์", Code: "SCI", Color: "#F59E0B"},
	{Name: "สังคมศึกษา", Code: "SOC", Color: "#8B5CF6"},
	{Name: "ประวัติศาสตร์", Code: "HIS", Color: "#EC4899"},
	{Name: "สุขศึกษา", Code: "PE", Color: "#14B8A6"},
	{Name: "ศิลปะ", Code: "ART", Color: "#F97316"},
	{Name: "การงานอาชีพ", Code: "WORK", Color: "#6366F1"},
	{Name: "ภาษาอังกฤษ", Code: "ENG", Color: "#EF4444"},
}
