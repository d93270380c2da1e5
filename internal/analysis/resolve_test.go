package analysis

import "testing"

func TestResolveDefaultPatterns(t *testing.T) {
	cols := []string{"Company", "Industry", "full_address", "LAT", "Longitude", "crime_rate", "transit_score", "total_leasedSF"}
	p := DefaultPatterns()
	want := map[Role]string{
		RoleLatitude:      "LAT",
		RoleLongitude:     "Longitude",
		RoleSafety:        "crime_rate",
		RoleAccessibility: "transit_score",
		RoleSquareFootage: "total_leasedSF",
		RoleCompany:       "Company",
		RoleIndustry:      "Industry",
		RoleAddress:       "full_address",
	}
	for role, exp := range want {
		got, ok, err := FirstMatch(cols, p[role])
		if err != nil {
			t.Fatalf("%s: %v", role, err)
		}
		if !ok || got != exp {
			t.Errorf("%s = %q (ok=%v), want %q", role, got, ok, exp)
		}
	}
}

func TestResolvePatternOrderBeatsColumnOrder(t *testing.T) {
	r, err := NewResolver([]string{`crime`, `risk`})
	if err != nil {
		t.Fatal(err)
	}
	got, ok := r.Resolve([]string{"flood_risk", "Crime_Index"})
	if !ok || got != "Crime_Index" {
		t.Fatalf("got %q, want Crime_Index", got)
	}
}

func TestResolveOrderIndependent(t *testing.T) {
	r, err := NewResolver([]string{`sf`})
	if err != nil {
		t.Fatal(err)
	}
	a, _ := r.Resolve([]string{"sublet_sf", "leased_sf", "asf"})
	b, _ := r.Resolve([]string{"asf", "leased_sf", "sublet_sf"})
	if a != b || a != "asf" {
		t.Fatalf("resolve depends on order: %q vs %q", a, b)
	}
}

func TestResolveNoMatch(t *testing.T) {
	got, ok, err := FirstMatch([]string{"name", "city"}, DefaultPatterns()[RoleSquareFootage])
	if err != nil {
		t.Fatal(err)
	}
	if ok || got != "" {
		t.Fatalf("got %q, want no match", got)
	}
}

func TestResolveInvalidPattern(t *testing.T) {
	if _, err := NewResolver([]string{`(unclosed`}); err == nil {
		t.Fatalf("expected compile error")
	}
}

func TestCoordinatePatternsAreAnchored(t *testing.T) {
	p := DefaultPatterns()
	if _, ok, _ := FirstMatch([]string{"platform", "along_route"}, p[RoleLatitude]); ok {
		t.Fatalf("latitude pattern matched a non-coordinate column")
	}
	if _, ok, _ := FirstMatch([]string{"along_route"}, p[RoleLongitude]); ok {
		t.Fatalf("longitude pattern matched a non-coordinate column")
	}
	for _, c := range []string{"lon", "LNG", "long", "longitude"} {
		if _, ok, _ := FirstMatch([]string{c}, p[RoleLongitude]); !ok {
			t.Errorf("longitude pattern missed %q", c)
		}
	}
}
