package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"artistdb/internal/diag"
	"artistdb/internal/document"
	"artistdb/internal/fileutil"
	"artistdb/internal/logging"
)

// ErrLossyRewrite reports a registry whose normalized form would lose
// malformed records or fields.
var ErrLossyRewrite = errors.New("normalized registry would drop malformed entries")

// droppedByRewrite counts diagnostics for source data that SourceDocument
// does not carry.
func droppedByRewrite(diags []diag.Diagnostic) int {
	return len(diag.Filter(diags, diag.KindMalformedRecord)) + len(diag.Filter(diags, diag.KindMalformedField))
}

// FormatResult describes a Format call.
type FormatResult struct {
	BackupPath string
	Changed    bool
	Artists    int
}

// Format rewrites the registry in normalized form without publishing. A
// timestamped backup of the original is always written first. Unlike Run, a
// missing or unparsable registry is an error, and so is one with malformed
// entries (ErrLossyRewrite).
func (p *Pipeline) Format(ctx context.Context) (FormatResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	original, err := os.ReadFile(p.registryPath)
	if err != nil {
		return FormatResult{}, fmt.Errorf("read registry: %w", err)
	}
	doc, err := document.Parse(original)
	if err != nil {
		return FormatResult{}, fmt.Errorf("parse registry: %s", document.DescribeError(err))
	}
	reg, diags, err := p.normalizer.Normalize(ctx, doc)
	if err != nil {
		return FormatResult{}, err
	}
	for _, d := range diags {
		logging.LogDiagnostic(ctx, p.logger, d)
	}
	if n := droppedByRewrite(diags); n > 0 {
		return FormatResult{Artists: reg.Len()}, fmt.Errorf("%w: %d malformed records or fields", ErrLossyRewrite, n)
	}

	encoded := document.Encode(reg.SourceDocument())
	res := FormatResult{Artists: reg.Len(), Changed: !bytes.Equal(encoded, original)}

	suffix := fmt.Sprintf("-%d%s", p.now().Unix(), BackupSuffix)
	if res.BackupPath, err = fileutil.Backup(p.registryPath, suffix); err != nil {
		return res, err
	}
	if err := fileutil.WriteFileAtomic(p.registryPath, encoded, 0o644); err != nil {
		return res, fmt.Errorf("write registry: %w", err)
	}
	p.logger.Info("formatted registry",
		logging.String(logging.FieldPath, p.registryPath),
		logging.String("backup", res.BackupPath),
		logging.Bool("changed", res.Changed))
	return res, nil
}
