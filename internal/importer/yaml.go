package importer

import (
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/taskstack/internal/breakdown"
	"github.com/Iron-Ham/taskstack/internal/errors"
)

// yamlTask is one entry of a YAML task file. Due dates are kept as text
// and parsed with breakdown.ParseDue in the local zone.
type yamlTask struct {
	Title           string `yaml:"title"`
	Category        string `yaml:"category"`
	EstimateMinutes int    `yaml:"estimate_minutes"`
	Due             string `yaml:"due"`
	Importance      int    `yaml:"importance"`
	Notes           string `yaml:"notes"`
	Link            string `yaml:"link"`
}

type yamlFile struct {
	Tasks []yamlTask `yaml:"tasks"`
}

// ParseYAML reads either a top-level list of tasks or a mapping with a
// "tasks" list:
//
//	tasks:
//	  - title: Renew passport
//	    category: Admin
//	    estimate_minutes: 45
//	    due: 2026-06-01
//	    importance: 4
func ParseYAML(r io.Reader) ([]breakdown.Input, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, errors.NewValidationError("invalid YAML").WithCause(err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	var items []yamlTask
	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&items); err != nil {
			return nil, errors.NewValidationError("invalid task list").WithCause(err)
		}
	case yaml.MappingNode:
		var f yamlFile
		if err := root.Decode(&f); err != nil {
			return nil, errors.NewValidationError("invalid task file").WithCause(err)
		}
		items = f.Tasks
	default:
		return nil, errors.NewValidationError("expected a list of tasks or a mapping with a tasks key")
	}

	inputs := make([]breakdown.Input, 0, len(items))
	for i, item := range items {
		due, err := breakdown.ParseDue(item.Due, time.Local)
		if err != nil {
			return nil, errors.Wrapf(err, "task %d", i+1)
		}
		inputs = append(inputs, breakdown.Input{
			Title:           item.Title,
			Category:        item.Category,
			EstimateMinutes: item.EstimateMinutes,
			DueAt:           due,
			Importance:      item.Importance,
			Notes:           item.Notes,
			Link:            item.Link,
		})
	}
	return inputs, nil
}
