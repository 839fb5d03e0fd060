package attach

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchName(t *testing.T) {
	tests := []struct {
		name        string
		candidate   string
		identifiers []string
		want        string
		wantOK      bool
	}{
		{
			name:        "exact match",
			candidate:   "Sample_A",
			identifiers: []string{"Sample_B", "Sample_A"},
			want:        "Sample_A",
			wantOK:      true,
		},
		{
			name:        "exact match is case insensitive",
			candidate:   "sample_a",
			identifiers: []string{"SAMPLE_A"},
			want:        "SAMPLE_A",
			wantOK:      true,
		},
		{
			name:        "exact beats earlier partial",
			candidate:   "Sample_A",
			identifiers: []string{"Sample_A_R1", "Sample_A"},
			want:        "Sample_A",
			wantOK:      true,
		},
		{
			name:        "identifier contains candidate",
			candidate:   "Sample_A",
			identifiers: []string{"Sample_A_R1"},
			want:        "Sample_A_R1",
			wantOK:      true,
		},
		{
			name:        "candidate contains identifier",
			candidate:   "Run12_Sample_A",
			identifiers: []string{"Sample_A"},
			want:        "Sample_A",
			wantOK:      true,
		},
		{
			name:        "partial is first fit",
			candidate:   "Sample_A",
			identifiers: []string{"Sample_A_R1", "Sample_A_R2"},
			want:        "Sample_A_R1",
			wantOK:      true,
		},
		{
			name:        "no match",
			candidate:   "Sample_Z",
			identifiers: []string{"Sample_A", "Sample_B"},
			wantOK:      false,
		},
		{
			name:        "empty candidate matches nothing",
			candidate:   "",
			identifiers: []string{"Sample_A"},
			wantOK:      false,
		},
		{
			name:        "empty identifier list",
			candidate:   "Sample_A",
			identifiers: nil,
			wantOK:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MatchName(tt.candidate, tt.identifiers)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchNameDoesNotConsume(t *testing.T) {
	identifiers := []string{"Sample_A"}

	first, ok := MatchName("Run1_Sample_A", identifiers)
	assert.True(t, ok)
	second, ok2 := MatchName("Run2_Sample_A", identifiers)
	assert.True(t, ok2)
	assert.Equal(t, first, second)
}
