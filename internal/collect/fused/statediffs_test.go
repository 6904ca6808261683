package fused

import (
	"testing"

	"github.com/crypto-data/freeze/internal/schema"
)

func TestDecodeParityDiffSame(t *testing.T) {
	c := decodeParityDiff("=")
	if !c.present || c.changeType != "same" {
		t.Fatalf("got %+v", c)
	}
}

func TestDecodeParityDiffBorn(t *testing.T) {
	c := decodeParityDiff(map[string]any{"+": "0x64"})
	if !c.present || c.changeType != "born" || c.to != "0x64" {
		t.Fatalf("got %+v", c)
	}
}

func TestDecodeParityDiffDied(t *testing.T) {
	c := decodeParityDiff(map[string]any{"-": "0x64"})
	if !c.present || c.changeType != "died" || c.from != "0x64" {
		t.Fatalf("got %+v", c)
	}
}

func TestDecodeParityDiffChanged(t *testing.T) {
	c := decodeParityDiff(map[string]any{"*": map[string]any{"from": "0x1", "to": "0x2"}})
	if !c.present || c.changeType != "changed" || c.from != "0x1" || c.to != "0x2" {
		t.Fatalf("got %+v", c)
	}
}

func TestDecodeParityDiffUnrecognizedIsAbsent(t *testing.T) {
	c := decodeParityDiff(map[string]any{"unexpected": true})
	if c.present {
		t.Fatalf("expected absent, got %+v", c)
	}
}

func TestGethFieldDiffBornDiedChangedSame(t *testing.T) {
	born := gethFieldDiff(nil, map[string]any{"balance": "0x10"}, "balance")
	if born.changeType != "born" {
		t.Fatalf("born = %+v", born)
	}
	died := gethFieldDiff(map[string]any{"balance": "0x10"}, nil, "balance")
	if died.changeType != "died" {
		t.Fatalf("died = %+v", died)
	}
	changed := gethFieldDiff(map[string]any{"balance": "0x10"}, map[string]any{"balance": "0x20"}, "balance")
	if changed.changeType != "changed" {
		t.Fatalf("changed = %+v", changed)
	}
	same := gethFieldDiff(map[string]any{"balance": "0x10"}, map[string]any{"balance": "0x10"}, "balance")
	if same.changeType != "same" {
		t.Fatalf("same = %+v", same)
	}
}

func TestMatchRequiresAtLeastTwoSelected(t *testing.T) {
	if m := Match(map[schema.Datatype]bool{schema.BalanceDiffs: true}); m != nil {
		t.Fatalf("expected no match with a single selected member, got %v", m)
	}
}

func TestMatchFusesWhenTwoOrMoreSelected(t *testing.T) {
	m := Match(map[schema.Datatype]bool{schema.BalanceDiffs: true, schema.CodeDiffs: true})
	if m == nil {
		t.Fatal("expected a match with two selected members")
	}
}
