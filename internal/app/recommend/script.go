package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/dalemusser/campushub/internal/app/system/timeouts"
	"github.com/google/uuid"
)

// ScriptScorer runs a local scoring script as a subprocess. The request is
// written to a uniquely named temporary JSON file, the script receives the
// file path and the catalog dataset path as arguments, and results come back
// as a JSON array on stdout. A stdout object of the form {"error": "..."}
// reports a script-level failure.
type ScriptScorer struct {
	interpreter string
	script      string
	dataset     string
}

// NewScriptScorer builds a scorer that invokes script with dataset via the
// given interpreter (for example "python3"). An empty interpreter runs the
// script directly.
func NewScriptScorer(interpreter, script, dataset string) *ScriptScorer {
	return &ScriptScorer{interpreter: interpreter, script: script, dataset: dataset}
}

func (s *ScriptScorer) Score(ctx context.Context, req Request) ([]Candidate, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode script input: %w", err)
	}

	inputPath := filepath.Join(os.TempDir(), fmt.Sprintf("campushub-search-%s.json", uuid.NewString()))
	if err := os.WriteFile(inputPath, body, 0o600); err != nil {
		return nil, fmt.Errorf("write script input: %w", err)
	}
	defer os.Remove(inputPath)

	ctx, cancel := context.WithTimeout(ctx, timeouts.Resolve())
	defer cancel()

	var cmd *exec.Cmd
	if s.interpreter != "" {
		cmd = exec.CommandContext(ctx, s.interpreter, s.script, inputPath, s.dataset)
	} else {
		cmd = exec.CommandContext(ctx, s.script, inputPath, s.dataset)
	}
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("scoring script timed out: %w", ctx.Err())
		}
		return nil, fmt.Errorf("scoring script: %w", err)
	}

	var results []Candidate
	if err := json.Unmarshal(out, &results); err == nil {
		return results, nil
	}

	var failure struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(out, &failure); err == nil && failure.Error != "" {
		return nil, fmt.Errorf("scoring script: %s", failure.Error)
	}
	return nil, fmt.Errorf("scoring script produced unparseable output")
}
