package finding

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in      string
		want    Severity
		wantErr bool
	}{
		{in: "info", want: Info},
		{in: "WARNING", want: Warning},
		{in: "warn", want: Warning},
		{in: " Error ", want: Error},
		{in: "fatal", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSeverity(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindingLocationAndString(t *testing.T) {
	lineLevel := Finding{Severity: Warning, Message: "Line exceeds 80 characters (81)", File: "a.c", Line: 3}
	assert.Equal(t, "a.c:3", lineLevel.Location())
	assert.Equal(t, "WARNING: a.c:3: Line exceeds 80 characters (81)", lineLevel.String())

	fileLevel := Finding{Severity: Warning, Message: "File is too long (501 lines)", File: "a.c"}
	assert.False(t, fileLevel.HasLine())
	assert.Equal(t, "a.c", fileLevel.Location())

	bare := Finding{Severity: Info, Message: "hello"}
	assert.Equal(t, "INFO: hello", bare.String())
}

func TestSeverityJSON(t *testing.T) {
	data, err := json.Marshal(Finding{Severity: Error, Rule: "resource", Message: "m", Line: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"severity":"ERROR","rule":"resource","message":"m","line":2}`, string(data))

	var f Finding
	require.NoError(t, json.Unmarshal(data, &f))
	assert.Equal(t, Error, f.Severity)
}

func TestFormatWithoutColor(t *testing.T) {
	assert.Equal(t, "ERROR", Format(Error, false))
	assert.Equal(t, "INFO: x.c:1: msg", Render(Finding{Severity: Info, Message: "msg", File: "x.c", Line: 1}, false))
}

func TestAtLeastAndCount(t *testing.T) {
	fs := []Finding{{Severity: Info}, {Severity: Warning}, {Severity: Warning}}
	assert.True(t, AtLeast(fs, Warning))
	assert.False(t, AtLeast(fs, Error))
	assert.Equal(t, 2, Count(fs)[Warning])
}
