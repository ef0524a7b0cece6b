package fingerprint_test

import (
	"context"
	"testing"

	"artistdb/internal/avatar"
	"artistdb/internal/catalog"
	"artistdb/internal/document"
	"artistdb/internal/fingerprint"
	"artistdb/internal/registry"
	"artistdb/internal/social"
)

func build(t *testing.T, src string) (*document.Document, *registry.Registry) {
	t.Helper()
	doc, err := document.Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cat := catalog.Default()
	reg, _, err := registry.NewNormalizer(social.NewResolver(cat), avatar.NewResolver(cat)).Normalize(context.Background(), doc)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	return doc, reg
}

func TestEmptyInputsAreZero(t *testing.T) {
	if fp := fingerprint.OfRegistry(registry.New(nil)); fp != fingerprint.Zero {
		t.Fatalf("empty registry = %s", fp)
	}
	if fp := fingerprint.OfDocument(&document.Document{}); fp != fingerprint.Zero {
		t.Fatalf("empty document = %s", fp)
	}
	if fp := fingerprint.OfDocument(nil); fp != fingerprint.Zero {
		t.Fatalf("nil document = %s", fp)
	}
}

func TestRegistryFingerprintIgnoresRecordOrder(t *testing.T) {
	_, a := build(t, "[a]\ngithub = \"x\"\n\n[b]\ngithub = \"y\"\n")
	_, b := build(t, "[b]\ngithub = \"y\"\n\n[a]\ngithub = \"x\"\n")
	if fingerprint.OfRegistry(a) != fingerprint.OfRegistry(b) {
		t.Fatal("record order changed the registry fingerprint")
	}
}

func TestRegistryFingerprintTracksSocialOrder(t *testing.T) {
	_, a := build(t, "[a]\ngithub = \"x\"\nreddit = \"x\"\n")
	_, b := build(t, "[a]\nreddit = \"x\"\ngithub = \"x\"\n")
	if fingerprint.OfRegistry(a) == fingerprint.OfRegistry(b) {
		t.Fatal("social order should change the fingerprint")
	}
}

func TestRegistryFingerprintTracksContent(t *testing.T) {
	_, a := build(t, "[a]\n__name__ = \"A\"\n")
	_, b := build(t, "[a]\n__name__ = \"B\"\n")
	if fingerprint.OfRegistry(a) == fingerprint.OfRegistry(b) {
		t.Fatal("display name change not detected")
	}
	_, c := build(t, "[a]\n__name__ = \"A\"\n")
	if fingerprint.OfRegistry(a) != fingerprint.OfRegistry(c) {
		t.Fatal("identical content produced different fingerprints")
	}
}

func TestDocumentFingerprintDetectsNormalization(t *testing.T) {
	clean, reg := build(t, "[alice]\ngithub = \"alice\"\n")
	if fingerprint.OfDocument(clean) != fingerprint.OfDocument(reg.SourceDocument()) {
		t.Fatal("already-normalized document should match its normalized form")
	}
	dirty, reg := build(t, "[Alice]\nGitHub = \"alice\"\n")
	if fingerprint.OfDocument(dirty) == fingerprint.OfDocument(reg.SourceDocument()) {
		t.Fatal("normalization change not detected")
	}
}

func TestParseRoundTrip(t *testing.T) {
	fp := fingerprint.Fingerprint(0xdeadbeef)
	got, err := fingerprint.Parse(fp.String())
	if err != nil || got != fp {
		t.Fatalf("Parse(%s) = %s, %v", fp, got, err)
	}
	if got, err := fingerprint.Parse(""); err != nil || got != fingerprint.Zero {
		t.Fatalf("Parse(\"\") = %s, %v", got, err)
	}
	if _, err := fingerprint.Parse("zz"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestDetector(t *testing.T) {
	d := fingerprint.NewDetector()

	first := d.Decide(10, 10, 5)
	if !first.ContentChanged || first.NormalizationChanged || !first.ShouldPublish() {
		t.Fatalf("first run = %+v", first)
	}
	if d.Previous() != 5 {
		t.Fatalf("previous = %s", d.Previous())
	}

	same := d.Decide(10, 10, 5)
	if same.ShouldPublish() {
		t.Fatalf("unchanged run should not publish: %+v", same)
	}

	normalized := d.Decide(10, 11, 5)
	if normalized.ContentChanged || !normalized.NormalizationChanged || !normalized.ShouldPublish() {
		t.Fatalf("normalization run = %+v", normalized)
	}

	empty := d.Decide(fingerprint.Zero, fingerprint.Zero, fingerprint.Zero)
	if empty.ShouldPublish() {
		t.Fatalf("empty registry must not publish: %+v", empty)
	}
	if d.Previous() != 5 {
		t.Fatal("invalid fingerprint must not replace previous")
	}

	invalidPre := d.Decide(fingerprint.Zero, 11, 5)
	if invalidPre.NormalizationChanged {
		t.Fatal("normalization comparison requires both fingerprints valid")
	}

	d.Seed(7)
	if changed := d.Decide(1, 1, 7); changed.ContentChanged {
		t.Fatal("seeded fingerprint should suppress publishing identical content")
	}
}
