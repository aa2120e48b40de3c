package remote

import "testing"

func TestQuerySpec_BuildersCopy(t *testing.T) {
	base := Query("products")
	filtered := base.Where("category", "furniture")
	ordered := filtered.OrderedBy("timestamp", Descending).WithLimit(5)

	if base.Filter != nil || base.OrderBy != nil || base.Limit != 0 {
		t.Errorf("base spec was mutated: %+v", base)
	}
	if filtered.OrderBy != nil || filtered.Limit != 0 {
		t.Errorf("filtered spec was mutated: %+v", filtered)
	}
	if ordered.Filter == nil || ordered.OrderBy.Direction != Descending || ordered.Limit != 5 {
		t.Errorf("unexpected ordered spec: %+v", ordered)
	}

	want := "products where category == furniture order by timestamp desc limit 5"
	if got := ordered.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestQuerySpec_Validate(t *testing.T) {
	tests := []struct {
		name    string
		spec    QuerySpec
		wantErr bool
	}{
		{"plain collection", Query("products"), false},
		{"filtered and ordered", Query("products").Where("featured", true).OrderedBy("timestamp", Descending).WithLimit(10), false},
		{"empty collection", Query(""), true},
		{"negative limit", Query("products").WithLimit(-1), true},
		{"blank filter field", Query("products").Where(" ", 1), true},
		{"blank order field", Query("products").OrderedBy("", Ascending), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseDirection(t *testing.T) {
	if ParseDirection(" DESC ") != Descending {
		t.Error("expected desc to parse case-insensitively")
	}
	if ParseDirection("sideways") != Ascending {
		t.Error("expected unknown directions to default to ascending")
	}
}
