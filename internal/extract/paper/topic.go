package paper

import "strings"

// topicKeywords maps title keywords to coarse topic labels, checked in
// order: the more specific task-and-motion phrasing wins over plain
// motion planning.
var topicKeywords = []struct {
	keywords []string
	topic    string
}{
	{[]string{"task and motion", "task-and-motion", "tamp"}, "task_and_motion_planning"},
	{[]string{"motion planning", "sampling-based", "sampling based", "planner"}, "motion_planning"},
}

// InferTopic derives a coarse topic label from a paper title. Titles
// matching no keyword get an empty topic, which excludes their chunks
// from topic-filtered queries.
func InferTopic(title string) string {
	lower := strings.ToLower(title)
	if strings.Contains(lower, "task") && strings.Contains(lower, "motion") {
		return "task_and_motion_planning"
	}
	for _, row := range topicKeywords {
		for _, kw := range row.keywords {
			if strings.Contains(lower, kw) {
				return row.topic
			}
		}
	}
	return ""
}
