package utils

import "testing"

func TestMergeLabel(t *testing.T) {
	tests := []struct {
		name     string
		existing Label
		incoming Label
		want     Label
	}{
		{"empty existing", Label{}, Label{Value: "exact", Source: "filter"}, Label{Value: "exact", Source: "filter"}},
		{"empty incoming", Label{Value: "exact", Source: "filter"}, Label{}, Label{Value: "exact", Source: "filter"}},
		{"identical", Label{Value: "a", Source: "s"}, Label{Value: "a", Source: "s"}, Label{Value: "a", Source: "s"}},
		{"same source", Label{Value: "a", Source: "s"}, Label{Value: "b", Source: "s"}, Label{Value: "a|b", Source: "s"}},
		{"different source", Label{Value: "a", Source: "s"}, Label{Value: "b", Source: "t"}, Label{Value: "a|b", Source: "s,t"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MergeLabel(tt.existing, tt.incoming); got != tt.want {
				t.Errorf("MergeLabel() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFlatten(t *testing.T) {
	got := Flatten(map[string]Label{"rank_path": {Value: "nearest", Source: "rank"}})
	if got["rank_path"] != "nearest" || len(got) != 1 {
		t.Errorf("Flatten() = %v", got)
	}
}
