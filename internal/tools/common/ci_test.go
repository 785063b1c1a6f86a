package common

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestWriteCIResultSingleJSONLine(t *testing.T) {
	var buf bytes.Buffer
	WriteCIResult(&buf, false, "blacklistctl purge", []string{"purged=0"}, errors.New("db down"))

	out := buf.String()
	if strings.Count(out, "\n") != 1 {
		t.Fatalf("expected a single line, got %q", out)
	}
	var res CIResult
	if err := json.Unmarshal(buf.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.OK || res.Command != "blacklistctl purge" || res.Error != "db down" || len(res.Details) != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestWriteCIResultOmitsEmptyError(t *testing.T) {
	var buf bytes.Buffer
	WriteCIResult(&buf, true, "inspect", nil, nil)
	if strings.Contains(buf.String(), `"error"`) {
		t.Fatalf("expected no error field, got %s", buf.String())
	}
}
