package analysis

import "testing"

func TestDefaultRegistryContents(t *testing.T) {
	reg := DefaultRegistry()

	for _, id := range []string{
		TaskSummarization,
		TaskSentimentAnalysis,
		TaskActionItemExtraction,
		TaskCallCategorization,
	} {
		task, ok := reg.Lookup(id)
		if !ok {
			t.Errorf("expected task %q to be registered", id)
			continue
		}
		if task.Description == "" {
			t.Errorf("task %q has empty description", id)
		}
		if task.OutputSchema == "" {
			t.Errorf("task %q has empty output schema", id)
		}
	}
}

func TestLookupUnknown(t *testing.T) {
	reg := DefaultRegistry()
	if _, ok := reg.Lookup("no_such_task"); ok {
		t.Error("expected lookup miss")
	}
}

func TestIDs(t *testing.T) {
	reg := DefaultRegistry()
	if len(reg.IDs()) != 4 {
		t.Errorf("expected 4 task ids, got %d", len(reg.IDs()))
	}
}
