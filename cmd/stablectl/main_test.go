package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/stable-scheduler-go/pkg/ingest"
)

func writeData(t *testing.T, horses string) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		ingest.FileHorses:         horses,
		ingest.FileSkills:         "Nom_Cheval;Competence;Qualification\nAlto;jump;Oui\n",
		ingest.FileFriendships:    "Nom_Cheval;Amis\nAlto;Bella\nBella;Alto\n",
		ingest.FileActiveCourses:  "Jour;Heure_début;Heure_fin;Cours_nom;Exigence_1;Nombre_chevaux\nLundi;09:00;10:00;Jumping;jump;1\n",
		ingest.FilePassiveCourses: "Jour;Heure_début;Heure_fin;Coursautres_nom;Exigence;Nombre_chevaux\n",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGenerate_WritesReports(t *testing.T) {
	dir := writeData(t, "Nom_Cheval;Max_heures_Travail\nAlto;4\nBella;4\n")
	txt := filepath.Join(t.TempDir(), "week.txt")
	xlsx := filepath.Join(t.TempDir(), "week.xlsx")

	out, err := execute(t, "generate", "--data", dir, "--days", "Lundi", "--txt", txt, "--xlsx", xlsx)
	require.NoError(t, err)
	assert.Contains(t, out, "2 horses")
	assert.Contains(t, out, "Alto")

	report, err := os.ReadFile(txt)
	require.NoError(t, err)
	assert.Contains(t, string(report), "09:00-10:00 -> Active course: Jumping")
	assert.Contains(t, string(report), "Turnout: With Bella, Paddock 1")

	info, err := os.Stat(xlsx)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestValidate(t *testing.T) {
	dir := writeData(t, "Nom_Cheval;Max_heures_Travail\nAlto;4\nBella;4\n")
	out, err := execute(t, "validate", "--data", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "ok: 2 horses, 1 active courses, 0 passive courses")
	assert.Contains(t, out, "Lundi Mardi Mercredi Jeudi Vendredi")
}

func TestValidate_ReportsRosterErrors(t *testing.T) {
	dir := writeData(t, "Nom_Cheval;Max_heures_Travail\nAlto;4\nAlto;2\n")
	_, err := execute(t, "validate", "--data", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate horse")

	_, err = execute(t, "generate", "--data", t.TempDir())
	assert.Error(t, err)
}
