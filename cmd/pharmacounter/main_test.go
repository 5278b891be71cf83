package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pharmacounter/internal/config"
	"pharmacounter/internal/core"
	"pharmacounter/internal/logger"
	"pharmacounter/pkg/domain"
)

type fakeProvider struct {
	facts domain.StructuredFacts
	err   error
}

func (f fakeProvider) ExtractKnowledge(context.Context, string) (domain.StructuredFacts, error) {
	return f.facts, f.err
}

func (f fakeProvider) GenerateText(_ context.Context, mode domain.AssistMode, s1, s2 string) (string, error) {
	return string(mode) + ":" + s1 + ":" + s2, f.err
}

func (f fakeProvider) Chat(_ context.Context, history []domain.ChatMessage, catalog []domain.CatalogEntry) (string, error) {
	return "catálogo com " + catalog[0].Name, f.err
}

// setup points storage at a fresh directory and installs provider.
func setup(t *testing.T, provider aiProvider) {
	t.Helper()
	for _, k := range []string{"PHARMACOUNTER_SQLITE_PATH", "PHARMACOUNTER_POSTGRES_DSN", "PHARMACOUNTER_REDIS_ADDR",
		"PHARMACOUNTER_S3_BUCKET", "PHARMACOUNTER_HTTP_ADDR", "PHARMACOUNTER_LOG_MODE"} {
		t.Setenv(k, "")
	}
	t.Setenv("PHARMACOUNTER_STORAGE_DRIVER", "fs")
	t.Setenv("PHARMACOUNTER_FS_ROOT", t.TempDir())
	if provider != nil {
		t.Setenv("GEMINI_API_KEY", "test-key")
	} else {
		t.Setenv("GEMINI_API_KEY", "")
	}
	prev := newProvider
	newProvider = func(context.Context, *config.Config, *logger.Logger) (aiProvider, error) { return provider, nil }
	t.Cleanup(func() { newProvider = prev })
}

func runCLI(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var out, errOut bytes.Buffer
	args = append([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml")}, args...)
	code := run(args, &out, &errOut)
	return out.String(), errOut.String(), code
}

func TestListShowsBootstrapRecord(t *testing.T) {
	setup(t, nil)
	out, _, code := runCLI(t, "list")
	if code != 0 || !strings.Contains(out, "DIPIRONA SÓDICA") || !strings.HasPrefix(out, "ID") {
		t.Fatalf("list exit %d:\n%s", code, out)
	}
	out, _, code = runCLI(t, "list", "--type", "Xarope", "--json")
	var records []domain.DrugRecord
	if code != 0 || json.Unmarshal([]byte(out), &records) != nil || len(records) != 1 {
		t.Fatalf("list --json exit %d:\n%s", code, out)
	}
	if _, _, code := runCLI(t, "list", "--type", "Spray"); code == 0 {
		t.Fatalf("unknown type must fail")
	}
}

func TestAddPersistsAcrossRuns(t *testing.T) {
	setup(t, nil)
	_, errOut, code := runCLI(t, "add", "paracetamol", "--symptom", "Febre", "--operator", "Ana")
	if code == 0 || !strings.Contains(errOut, core.MsgCommitRequirements) {
		t.Fatalf("commit without attestation must fail, exit %d: %s", code, errOut)
	}

	out, errOut, code := runCLI(t, "add", "paracetamol", "--symptom", "Febre", "--operator", "Ana", "--attest",
		"--indications", "Dor e febre.", "--product", "Tylenol|Kenvue|Comprimido|Referência|750mg")
	if code != 0 {
		t.Fatalf("add exit %d: %s", code, errOut)
	}
	var rec domain.DrugRecord
	if err := json.Unmarshal([]byte(out), &rec); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if rec.Name != "PARACETAMOL" || rec.CreatedBy != "Ana" || rec.Products[0].Dosage != "750mg" || rec.Symptoms[0] != "febre" {
		t.Fatalf("unexpected record %+v", rec)
	}

	out, _, _ = runCLI(t, "stats")
	var stats domain.Stats
	if err := json.Unmarshal([]byte(out), &stats); err != nil || stats.Total != 2 || stats.MostRecent != "PARACETAMOL" {
		t.Fatalf("stats after restart: %s (%v)", out, err)
	}
	out, _, _ = runCLI(t, "symptoms")
	if !strings.Contains(out, "febre\n") {
		t.Fatalf("symptoms missing febre:\n%s", out)
	}
}

func TestEditAndDelete(t *testing.T) {
	setup(t, nil)
	out, errOut, code := runCLI(t, "edit", "1", "--remove-symptom", "enxaqueca", "--attest", "--operator", "Bia")
	if code != 0 {
		t.Fatalf("edit exit %d: %s", code, errOut)
	}
	var rec domain.DrugRecord
	_ = json.Unmarshal([]byte(out), &rec)
	if rec.ID != "1" || rec.CreatedBy != "Sistema" || rec.LastEditedBy != "Bia" || rec.HasSymptom("enxaqueca") {
		t.Fatalf("unexpected edited record %+v", rec)
	}

	if _, _, code := runCLI(t, "delete", "1"); code != 0 {
		t.Fatalf("delete failed")
	}
	if _, _, code := runCLI(t, "delete", "1"); code == 0 {
		t.Fatalf("second delete must fail")
	}
	if _, _, code := runCLI(t, "show", "1"); code == 0 {
		t.Fatalf("show of deleted record must fail")
	}
}

func TestAddWithPrefill(t *testing.T) {
	setup(t, fakeProvider{facts: domain.StructuredFacts{
		Indications: "Dor.", Contraindications: "Hepatopatia.", Interactions: "Álcool.", MechanismOfAction: "COX.",
		Symptoms: []string{"dor"}, StandardDosage: "500mg",
		CommonTradeNames: []domain.TradeNameFact{{Name: "Tylenol", Category: "Referência", Type: "gotas"}},
	}})
	out, errOut, code := runCLI(t, "add", "paracetamol", "--prefill", "--operator", "Ana", "--attest", "--interactions", "Varfarina.")
	if code != 0 {
		t.Fatalf("add exit %d: %s", code, errOut)
	}
	var rec domain.DrugRecord
	_ = json.Unmarshal([]byte(out), &rec)
	if rec.Interactions != "Varfarina." || rec.Indications != "Dor." || rec.Products[0].Type != domain.TypeLiquid {
		t.Fatalf("flags must override pre-filled facts: %+v", rec)
	}
}

func TestPrefillFailureReportsFixedMessage(t *testing.T) {
	setup(t, fakeProvider{err: errors.New("quota")})
	_, errOut, code := runCLI(t, "add", "paracetamol", "--prefill", "--operator", "Ana", "--attest")
	if code == 0 || !strings.Contains(errOut, core.MsgAugmentFailed) {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	out, _, _ := runCLI(t, "stats")
	if !strings.Contains(out, `"total": 1`) {
		t.Fatalf("failed pre-fill must not commit anything: %s", out)
	}
}

func TestAssistAndChatWithoutProvider(t *testing.T) {
	setup(t, nil)
	if _, _, code := runCLI(t, "assist", "explain", "dipirona"); code == 0 {
		t.Fatalf("assist without provider must fail")
	}
	out, _, code := runCLI(t, "chat", "febre?")
	if code == 0 || !strings.Contains(out, core.MsgChatFailed) {
		t.Fatalf("chat should print the apology and fail, exit %d: %s", code, out)
	}
}

func TestAssistAndChatWithProvider(t *testing.T) {
	setup(t, fakeProvider{})
	out, _, code := runCLI(t, "assist", "compare", "dipirona", "paracetamol")
	if code != 0 || strings.TrimSpace(out) != "compare:dipirona:paracetamol" {
		t.Fatalf("assist exit %d: %q", code, out)
	}
	out, _, code = runCLI(t, "chat", "o", "que", "temos?")
	if code != 0 || strings.TrimSpace(out) != "catálogo com DIPIRONA SÓDICA" {
		t.Fatalf("chat exit %d: %q", code, out)
	}
}

func TestSettingsCommand(t *testing.T) {
	setup(t, nil)
	out, _, code := runCLI(t, "settings", "--dark", "--accent", "amber")
	if code != 0 || !strings.Contains(out, `"accentColor": "amber"`) {
		t.Fatalf("settings update exit %d: %s", code, out)
	}
	out, _, _ = runCLI(t, "settings")
	if !strings.Contains(out, `"darkMode": true`) {
		t.Fatalf("settings not persisted: %s", out)
	}
	if _, _, code := runCLI(t, "settings", "--font", "comic"); code == 0 {
		t.Fatalf("unknown font must fail")
	}
}

func TestTipFollowsClock(t *testing.T) {
	setup(t, nil)
	prev := nowFunc
	t.Cleanup(func() { nowFunc = prev })
	nowFunc = func() time.Time { return time.Unix(3*60, 0) }
	out, _, code := runCLI(t, "tip")
	if code != 0 || strings.TrimSpace(out) != core.HealthReminders[3] {
		t.Fatalf("tip exit %d: %q", code, out)
	}
	out, _, _ = runCLI(t, "tip", "--all")
	if strings.Count(out, "\n") != len(core.HealthReminders) {
		t.Fatalf("expected every reminder:\n%s", out)
	}
}

func TestInvalidConfigFails(t *testing.T) {
	setup(t, nil)
	t.Setenv("PHARMACOUNTER_STORAGE_DRIVER", "floppy")
	if _, _, code := runCLI(t, "stats"); code == 0 {
		t.Fatalf("unknown driver must fail")
	}
}

func TestStorageListAndReset(t *testing.T) {
	setup(t, nil)
	out, _, code := runCLI(t, "storage", "list")
	if code != 0 || strings.Contains(out, domain.RecordsKey) {
		t.Fatalf("loading alone must not persist, exit %d:\n%s", code, out)
	}
	if _, errOut, code := runCLI(t, "delete", "1"); code != 0 {
		t.Fatalf("delete exit %d: %s", code, errOut)
	}
	out, _, code = runCLI(t, "storage", "list", "--json")
	var entries []struct {
		Key string `json:"key"`
	}
	if code != 0 || json.Unmarshal([]byte(out), &entries) != nil || len(entries) != 1 || entries[0].Key != domain.RecordsKey {
		t.Fatalf("storage list exit %d:\n%s", code, out)
	}

	if _, _, code := runCLI(t, "storage", "reset"); code == 0 {
		t.Fatalf("reset without --yes must fail")
	}
	out, errOut, code := runCLI(t, "storage", "reset", "--yes")
	if code != 0 || !strings.Contains(out, "deleted "+domain.RecordsKey) {
		t.Fatalf("reset exit %d: %s %s", code, out, errOut)
	}
	out, _, _ = runCLI(t, "list")
	if !strings.Contains(out, "DIPIRONA SÓDICA") {
		t.Fatalf("bootstrap record must return after reset:\n%s", out)
	}
}
