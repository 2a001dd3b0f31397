package types

import "testing"

func TestDamageTypeBitsFitInOneByte(t *testing.T) {
	all := DamageTypeDefault | DamageTypeFire | DamageTypeExplosive | DamageTypeEnergy |
		DamageTypeMelee | DamageTypePoison | DamageTypeFalling | DamageTypeDrowning
	if all != DamageTypeAll {
		t.Errorf("union of all flags: got %#x, want %#x", uint8(all), uint8(DamageTypeAll))
	}
	if DamageTypeDefault != 1 {
		t.Errorf("DamageTypeDefault: got %d, want 1", DamageTypeDefault)
	}
}

func TestParseDamageType(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    DamageType
		wantErr bool
	}{
		{"单个类型", "fire", DamageTypeFire, false},
		{"大小写与空白", "  Falling ", DamageTypeFalling, false},
		{"组合类型", "fire|explosive", DamageTypeFire | DamageTypeExplosive, false},
		{"全部", "all", DamageTypeAll, false},
		{"空字符串", "", DamageTypeNone, false},
		{"未知类型", "laser", DamageTypeNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDamageType(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDamageType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDamageType(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDamageTypeStringRoundTrip(t *testing.T) {
	d := DamageTypeFalling | DamageTypeDrowning
	parsed, err := ParseDamageType(d.String())
	if err != nil {
		t.Fatalf("ParseDamageType(%q) error: %v", d.String(), err)
	}
	if parsed != d {
		t.Errorf("round trip: got %v, want %v", parsed, d)
	}
}

func TestParseDamageTypes(t *testing.T) {
	got, err := ParseDamageTypes([]string{"falling", "drowning"})
	if err != nil {
		t.Fatalf("ParseDamageTypes error: %v", err)
	}
	if got != DamageTypeFalling|DamageTypeDrowning {
		t.Errorf("ParseDamageTypes = %v", got)
	}

	if _, err := ParseDamageTypes([]string{"falling", "bogus"}); err == nil {
		t.Error("expected error for unknown damage type")
	}
}

func TestTeamFromIndex(t *testing.T) {
	if team, ok := TeamFromIndex(1); !ok || team != Team1 {
		t.Errorf("TeamFromIndex(1) = %v, %v", team, ok)
	}
	if team, ok := TeamFromIndex(8); !ok || team != Team8 {
		t.Errorf("TeamFromIndex(8) = %v, %v", team, ok)
	}
	for _, idx := range []int{0, 9, -1} {
		if team, ok := TeamFromIndex(idx); ok || team != TeamNone {
			t.Errorf("TeamFromIndex(%d) should be rejected, got %v, %v", idx, team, ok)
		}
	}
}
