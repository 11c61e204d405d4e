package espw

import "testing"

func TestPolicyQualifies(t *testing.T) {
	p := testPolicy()

	tests := []struct {
		name string
		hit  Hit
		want bool
	}{
		{"clears both thresholds", Hit{Identity: 95.0, Length: 50}, true},
		{"at both thresholds", Hit{Identity: 90.0, Length: 30}, true},
		{"identity too low", Hit{Identity: 89.9, Length: 50}, false},
		{"too short", Hit{Identity: 99.0, Length: 29}, false},
	}
	for _, tt := range tests {
		if got := p.qualifies(tt.hit); got != tt.want {
			t.Errorf("%s: qualifies = %t, want %t", tt.name, got, tt.want)
		}
	}
}

func TestPolicyCleanSpan(t *testing.T) {
	p := testPolicy() // EdgeMargin 3, MaxRegionGaps 0
	set := testQuerySet(t)
	full := set.Get(FullLength) // region 25-34 on a 62 bp reference

	tests := []struct {
		name string
		hit  Hit
		want bool
	}{
		{"covers whole reference", Hit{QueryStart: 1, QueryEnd: 62}, true},
		{"covers region plus margin", Hit{QueryStart: 22, QueryEnd: 37}, true},
		{"stops one short of the left margin", Hit{QueryStart: 23, QueryEnd: 37}, false},
		{"stops one short of the right margin", Hit{QueryStart: 22, QueryEnd: 36}, false},
		{"misses the region entirely", Hit{QueryStart: 40, QueryEnd: 62}, false},
		{"gapped hit is dirty", Hit{QueryStart: 1, QueryEnd: 62, Gaps: 1}, false},
	}
	for _, tt := range tests {
		if got := p.cleanSpan(tt.hit, full); got != tt.want {
			t.Errorf("%s: cleanSpan = %t, want %t", tt.name, got, tt.want)
		}
	}
}

// A region near a reference end only requires coverage to that end.
func TestPolicyCleanSpanClampsMargin(t *testing.T) {
	p := Policy{MinIdentity: 90, MinAlignLength: 10, EdgeMargin: 5, MaxRegionGaps: 0, MinContigLength: 10}
	q := AlleleQuery{ID: "edge", Allele: Deletion, Seq: "gaaaaaaagacgtacgtacg", Region: Span{1, 9}}

	if !p.cleanSpan(Hit{QueryStart: 1, QueryEnd: 14}, q) {
		t.Error("hit starting at base 1 should span a region at the reference start")
	}
	if p.cleanSpan(Hit{QueryStart: 2, QueryEnd: 20}, q) {
		t.Error("hit starting at base 2 misses the region start")
	}
}

func TestPolicyValidate(t *testing.T) {
	if err := DefaultPolicy().Validate(); err != nil {
		t.Fatalf("default policy invalid: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(p *Policy)
	}{
		{"identity above 100", func(p *Policy) { p.MinIdentity = 101 }},
		{"negative identity", func(p *Policy) { p.MinIdentity = -1 }},
		{"zero alignment length", func(p *Policy) { p.MinAlignLength = 0 }},
		{"negative margin", func(p *Policy) { p.EdgeMargin = -1 }},
		{"negative gap allowance", func(p *Policy) { p.MaxRegionGaps = -1 }},
		{"zero contig length", func(p *Policy) { p.MinContigLength = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPolicy()
			tt.mutate(&p)
			err := p.Validate()
			if err == nil {
				t.Fatal("expected an error")
			}
			if _, ok := err.(*ConfigurationError); !ok {
				t.Errorf("error %T is not a ConfigurationError", err)
			}
		})
	}
}
