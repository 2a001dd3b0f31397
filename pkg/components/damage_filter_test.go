package components

import (
	"testing"

	"github.com/gonewx/defense/pkg/types"
)

func TestDamageFilterFields(t *testing.T) {
	f := FromTypeAndTeam(types.DamageTypeFire, types.Team3)

	if f.DamageType() != types.DamageTypeFire {
		t.Errorf("DamageType: got %v, want fire", f.DamageType())
	}
	if f.TeamFilter() != types.Team3 {
		t.Errorf("TeamFilter: got %#x, want %#x", uint8(f.TeamFilter()), uint8(types.Team3))
	}
	if f.Raw() != uint16(types.DamageTypeFire)|uint16(types.Team3)<<8 {
		t.Errorf("Raw: got %#x", f.Raw())
	}

	f.SetDamageType(types.DamageTypeEnergy)
	if f.DamageType() != types.DamageTypeEnergy || f.TeamFilter() != types.Team3 {
		t.Errorf("SetDamageType should keep team, got type=%v team=%#x", f.DamageType(), uint8(f.TeamFilter()))
	}

	f.SetTeamFilter(types.Team1 | types.Team2)
	if f.DamageType() != types.DamageTypeEnergy || f.TeamFilter() != types.Team1|types.Team2 {
		t.Errorf("SetTeamFilter should keep type, got type=%v team=%#x", f.DamageType(), uint8(f.TeamFilter()))
	}

	if NewDamageFilterFromRaw(f.Raw()) != f {
		t.Error("raw round trip should produce an equal filter")
	}
}

func TestFromTypeExcludingTeam(t *testing.T) {
	f := FromTypeExcludingTeam(types.DamageTypeDefault, types.Team1)
	if f.TeamFilter().Has(types.Team1) {
		t.Error("excluded team should not be set")
	}
	if f.TeamFilter() != types.TeamAll&^types.Team1 {
		t.Errorf("TeamFilter: got %#x", uint8(f.TeamFilter()))
	}

	team1 := FromTypeAndTeam(types.DamageTypeAll, types.Team1)
	team2 := FromTypeAndTeam(types.DamageTypeAll, types.Team2)
	if f.CollidesWith(team1, false) {
		t.Error("should not collide with the excluded team")
	}
	if !f.CollidesWith(team2, false) {
		t.Error("should collide with other teams")
	}
}

func TestCollidesWith(t *testing.T) {
	tests := []struct {
		name         string
		a, b         DamageFilter
		friendlyFire bool
		want         bool
	}{
		{
			name: "不同队伍且无友伤",
			a:    FromTypeAndTeam(types.DamageTypeDefault, types.Team1),
			b:    FromTypeAndTeam(types.DamageTypeDefault, types.Team2),
			want: false,
		},
		{
			name:         "不同队伍开启友伤",
			a:            FromTypeAndTeam(types.DamageTypeDefault, types.Team1),
			b:            FromTypeAndTeam(types.DamageTypeDefault, types.Team2),
			friendlyFire: true,
			want:         true,
		},
		{
			name: "相同队伍",
			a:    FromTypeAndTeam(types.DamageTypeDefault, types.Team1),
			b:    FromTypeAndTeam(types.DamageTypeAll, types.Team1|types.Team4),
			want: true,
		},
		{
			name:         "类型不匹配时友伤也不碰撞",
			a:            FromTypeAndTeam(types.DamageTypeFire, types.TeamAll),
			b:            FromTypeAndTeam(types.DamageTypeEnergy, types.TeamAll),
			friendlyFire: true,
			want:         false,
		},
		{
			name:         "None 类型从不碰撞",
			a:            FromTypeAndTeam(types.DamageTypeNone, types.TeamAll),
			b:            DamageFilterAll,
			friendlyFire: true,
			want:         false,
		},
		{
			name: "None 队伍在无友伤时不碰撞",
			a:    FromTypeAndTeam(types.DamageTypeAll, types.TeamNone),
			b:    DamageFilterAll,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.CollidesWith(tt.b, tt.friendlyFire); got != tt.want {
				t.Errorf("CollidesWith = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCollidesWithIsSymmetric(t *testing.T) {
	typeValues := []types.DamageType{
		types.DamageTypeNone, types.DamageTypeDefault, types.DamageTypeFire,
		types.DamageTypeFire | types.DamageTypeEnergy, types.DamageTypeAll,
	}
	teamValues := []types.Team{
		types.TeamNone, types.Team1, types.Team2, types.Team1 | types.Team8, types.TeamAll,
	}

	var filters []DamageFilter
	for _, dt := range typeValues {
		for _, team := range teamValues {
			filters = append(filters, FromTypeAndTeam(dt, team))
		}
	}

	for _, ff := range []bool{false, true} {
		for _, a := range filters {
			for _, b := range filters {
				if a.CollidesWith(b, ff) != b.CollidesWith(a, ff) {
					t.Fatalf("asymmetric collision: a=%#x b=%#x ff=%v", a.Raw(), b.Raw(), ff)
				}
			}
		}
	}
}

func TestAddRemoveTeam(t *testing.T) {
	f := FromTypeAndTeam(types.DamageTypeDefault, types.TeamNone)

	if !f.AddTeam(1) || !f.AddTeam(8) {
		t.Fatal("AddTeam(1/8) should succeed")
	}
	if f.TeamFilter() != types.Team1|types.Team8 {
		t.Errorf("TeamFilter after add: got %#x", uint8(f.TeamFilter()))
	}

	if !f.RemoveTeam(1) {
		t.Fatal("RemoveTeam(1) should succeed")
	}
	if f.TeamFilter() != types.Team8 {
		t.Errorf("TeamFilter after remove: got %#x", uint8(f.TeamFilter()))
	}

	t.Run("越界序号不修改过滤器", func(t *testing.T) {
		before := f.Raw()
		for _, idx := range []int{0, 9, -3, 255} {
			if f.AddTeam(idx) {
				t.Errorf("AddTeam(%d) should be rejected", idx)
			}
			if f.RemoveTeam(idx) {
				t.Errorf("RemoveTeam(%d) should be rejected", idx)
			}
		}
		if f.Raw() != before {
			t.Errorf("filter changed: %#x -> %#x", before, f.Raw())
		}
		if f.DamageType() != types.DamageTypeDefault {
			t.Errorf("damage type changed to %v", f.DamageType())
		}
	})
}
