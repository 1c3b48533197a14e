package model

import "testing"

func TestIsInventoryKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"100001", true},
		{"12345", true},
		{" 54321 ", true},
		{"0.1234", true},
		{"1234", false},
		{"1234567", false},
		{"1.5", false},
		{"TOTAL", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsInventoryKey(tt.key); got != tt.want {
			t.Errorf("IsInventoryKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestItemStatus(t *testing.T) {
	tests := []struct {
		located, relabel YesNo
		want             ItemStatus
	}{
		{No, No, ItemStatusPending},
		{No, Yes, ItemStatusPending},
		{Yes, No, ItemStatusLocated},
		{Yes, Yes, ItemStatusLocatedRelabel},
	}

	for _, tt := range tests {
		it := InventoryItem{Located: tt.located, Relabel: tt.relabel}
		if got := it.Status(); got != tt.want {
			t.Errorf("Status(located=%s, relabel=%s) = %s, want %s", tt.located, tt.relabel, got, tt.want)
		}
	}
}

func TestDisplayKey(t *testing.T) {
	if got := DisplayKey("0.0042"); got != ".0042" {
		t.Errorf("expected .0042, got %q", got)
	}
	if got := DisplayKey("100001"); got != "100001" {
		t.Errorf("expected key unchanged, got %q", got)
	}
}

func TestLocationLabels(t *testing.T) {
	if got := LocationLabel("OFICINA", 3); got != "OFICINA 03" {
		t.Errorf("LocationLabel = %q", got)
	}
	if got := LocationLabel("BODEGA", 112); got != "BODEGA 112" {
		t.Errorf("LocationLabel = %q", got)
	}

	tests := map[string]string{
		"OFICINA 03":    "OFICINA",
		"SALA JUNTAS 1": "SALA JUNTAS",
		"PASILLO":       "PASILLO",
		" ALMACEN 07 ":  "ALMACEN",
	}
	for label, want := range tests {
		if got := LocationBase(label); got != want {
			t.Errorf("LocationBase(%q) = %q, want %q", label, got, want)
		}
	}
}

func TestLookupOperator(t *testing.T) {
	op, ok := LookupOperator("41290")
	if !ok {
		t.Fatal("expected known operator")
	}
	if op.Name != "BENÍTEZ HERNÁNDEZ MARIO" {
		t.Errorf("unexpected name %q", op.Name)
	}

	if _, ok := LookupOperator("99999"); ok {
		t.Error("expected unknown operator to be rejected")
	}
}

func TestPhotoKeys(t *testing.T) {
	for _, kind := range PhotoKinds {
		key := PhotoKey(kind, "0.55")
		gotKind, gotID, ok := ParsePhotoKey(key)
		if !ok || gotKind != kind || gotID != "0.55" {
			t.Errorf("ParsePhotoKey(%q) = %v, %q, %v", key, gotKind, gotID, ok)
		}

		parsed, err := ParsePhotoKind(kind.String())
		if err != nil || parsed != kind {
			t.Errorf("ParsePhotoKind(%q) = %v, %v", kind.String(), parsed, err)
		}
	}

	if _, _, ok := ParsePhotoKey("img-123"); ok {
		t.Error("expected layout image key to be rejected")
	}
	if _, _, ok := ParsePhotoKey("inventory-"); ok {
		t.Error("expected empty id to be rejected")
	}
	if _, err := ParsePhotoKind("avatar"); err == nil {
		t.Error("expected unknown kind to fail")
	}
}

func TestNeedsRegularization(t *testing.T) {
	no, yes := false, true
	tests := []struct {
		item AdditionalItem
		want bool
	}{
		{AdditionalItem{Personal: false}, false},
		{AdditionalItem{Personal: true}, false},
		{AdditionalItem{Personal: true, HasEntryForm: &yes}, false},
		{AdditionalItem{Personal: true, HasEntryForm: &no}, true},
	}
	for i, tt := range tests {
		if got := tt.item.NeedsRegularization(); got != tt.want {
			t.Errorf("case %d: got %v, want %v", i, got, tt.want)
		}
	}
}
