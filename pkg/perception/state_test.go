package perception

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSnapshotMarshalsStateAsString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{Idle, `"state":"idle"`},
		{Scanning, `"state":"scanning"`},
		{Listening, `"state":"listening"`},
		{ProcessingQuery, `"state":"processing_query"`},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			data, err := json.Marshal(Snapshot{State: tt.state, Language: "en-US"})
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if !strings.Contains(string(data), tt.want) {
				t.Errorf("snapshot JSON %s does not contain %s", data, tt.want)
			}
		})
	}
}
