package arxiv

// CategoryGroup is one top-level arXiv archive with its watchable
// subcategories.
type CategoryGroup struct {
	Name          string            `json:"name"`
	Subcategories map[string]string `json:"subcategories"`
}

// Taxonomy lists the archives and subcategories exposed for watching.
var Taxonomy = map[string]CategoryGroup{
	"cs": {
		Name: "Computer Science",
		Subcategories: map[string]string{
			"cs.AI": "Artificial Intelligence",
			"cs.CL": "Computation and Language",
			"cs.CV": "Computer Vision",
			"cs.LG": "Machine Learning",
			"cs.RO": "Robotics",
		},
	},
	"stat": {
		Name: "Statistics",
		Subcategories: map[string]string{
			"stat.ML": "Machine Learning",
		},
	},
}
