package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vulntagger/models"
)

func testVulnInput(pageURL string) models.VulnInput {
	return models.VulnInput{
		PageURL:  pageURL,
		Selector: "div#login > form",
		Type:     "XSS",
		Severity: "High",
		Status:   "Open",
	}
}

func createTestProject(t *testing.T, db *DB, name string) *models.Project {
	t.Helper()

	project, _, err := db.CreateProject(context.Background(), GetTestKeychain(), name, "")
	require.NoError(t, err)
	return project
}

func TestCreateVuln(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db := GetTestDB()
	CleanupTestDB(t, db)

	ctx := context.Background()
	project := createTestProject(t, db, "Test Project")

	input := testVulnInput("/login")
	input.Description = "Reflected XSS in search box"
	input.Steps = "1. open /login\n2. inject payload"
	input.Payload = "<script>alert(1)</script>"

	vuln, err := db.CreateVuln(ctx, project.ID, input)
	require.NoError(t, err)

	assert.Greater(t, vuln.ID, int64(0))
	assert.Equal(t, project.ID, vuln.ProjectID)
	assert.Equal(t, "/login", vuln.PageURL)
	assert.Equal(t, "div#login > form", vuln.Selector)
	assert.Equal(t, "XSS", vuln.Type)
	assert.Equal(t, "High", vuln.Severity)
	assert.Equal(t, "Open", vuln.Status)
	assert.Equal(t, "Reflected XSS in search box", vuln.Description)
	assert.False(t, vuln.CreatedAt.IsZero())
}

func TestCreateVuln_OptionalFieldsDefaultEmpty(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db := GetTestDB()
	CleanupTestDB(t, db)

	ctx := context.Background()
	project := createTestProject(t, db, "Test Project")

	vuln, err := db.CreateVuln(ctx, project.ID, testVulnInput("/login"))
	require.NoError(t, err)

	assert.Equal(t, "", vuln.Description)
	assert.Equal(t, "", vuln.Steps)
	assert.Equal(t, "", vuln.Payload)
}

func TestListVulns_Ordering(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db := GetTestDB()
	CleanupTestDB(t, db)

	ctx := context.Background()
	project := createTestProject(t, db, "Test Project")

	r1, err := db.CreateVuln(ctx, project.ID, testVulnInput("/a"))
	require.NoError(t, err)
	r2, err := db.CreateVuln(ctx, project.ID, testVulnInput("/b"))
	require.NoError(t, err)
	r3, err := db.CreateVuln(ctx, project.ID, testVulnInput("/c"))
	require.NoError(t, err)

	vulns, err := db.ListVulns(ctx, project.ID, models.VulnQueryParams{})
	require.NoError(t, err)

	require.Len(t, vulns, 3)
	assert.Equal(t, r3.ID, vulns[0].ID)
	assert.Equal(t, r2.ID, vulns[1].ID)
	assert.Equal(t, r1.ID, vulns[2].ID)
}

func TestListVulns_Empty(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db := GetTestDB()
	CleanupTestDB(t, db)

	ctx := context.Background()
	project := createTestProject(t, db, "Test Project")

	vulns, err := db.ListVulns(ctx, project.ID, models.VulnQueryParams{})
	require.NoError(t, err)
	assert.Empty(t, vulns)
	assert.NotNil(t, vulns)
}

func TestListVulns_PageURLFilter(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db := GetTestDB()
	CleanupTestDB(t, db)

	ctx := context.Background()
	project := createTestProject(t, db, "Test Project")

	first, err := db.CreateVuln(ctx, project.ID, testVulnInput("/a"))
	require.NoError(t, err)
	_, err = db.CreateVuln(ctx, project.ID, testVulnInput("/b"))
	require.NoError(t, err)
	second, err := db.CreateVuln(ctx, project.ID, testVulnInput("/a"))
	require.NoError(t, err)

	vulns, err := db.ListVulns(ctx, project.ID, models.VulnQueryParams{PageURL: "/a"})
	require.NoError(t, err)

	require.Len(t, vulns, 2)
	assert.Equal(t, second.ID, vulns[0].ID)
	assert.Equal(t, first.ID, vulns[1].ID)
}

func TestListVulns_ClassificationFilters(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db := GetTestDB()
	CleanupTestDB(t, db)

	ctx := context.Background()
	project := createTestProject(t, db, "Test Project")

	high := testVulnInput("/a")
	high.Severity = "High"
	low := testVulnInput("/a")
	low.Severity = "Low"
	fixed := testVulnInput("/a")
	fixed.Severity = "Low"
	fixed.Status = "Fixed"

	for _, input := range []models.VulnInput{high, low, fixed} {
		_, err := db.CreateVuln(ctx, project.ID, input)
		require.NoError(t, err)
	}

	vulns, err := db.ListVulns(ctx, project.ID, models.VulnQueryParams{Severity: "Low"})
	require.NoError(t, err)
	assert.Len(t, vulns, 2)

	vulns, err = db.ListVulns(ctx, project.ID, models.VulnQueryParams{Severity: "Low", Status: "Fixed"})
	require.NoError(t, err)
	assert.Len(t, vulns, 1)

	vulns, err = db.ListVulns(ctx, project.ID, models.VulnQueryParams{Severity: "Critical"})
	require.NoError(t, err)
	assert.Empty(t, vulns)
}

func TestListVulns_Isolation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db := GetTestDB()
	CleanupTestDB(t, db)

	ctx := context.Background()
	projectA := createTestProject(t, db, "Project A")
	projectB := createTestProject(t, db, "Project B")

	vulnA, err := db.CreateVuln(ctx, projectA.ID, testVulnInput("/a"))
	require.NoError(t, err)
	vulnB, err := db.CreateVuln(ctx, projectB.ID, testVulnInput("/b"))
	require.NoError(t, err)

	vulns, err := db.ListVulns(ctx, projectA.ID, models.VulnQueryParams{})
	require.NoError(t, err)
	require.Len(t, vulns, 1)
	assert.Equal(t, vulnA.ID, vulns[0].ID)

	// B's record is invisible through A, even with a valid id
	_, err = db.UpdateVuln(ctx, projectA.ID, vulnB.ID, testVulnInput("/hijack"))
	assert.ErrorIs(t, err, ErrVulnNotFound)

	err = db.DeleteVuln(ctx, projectA.ID, vulnB.ID)
	assert.ErrorIs(t, err, ErrVulnNotFound)

	// and it is untouched under its own project
	vulns, err = db.ListVulns(ctx, projectB.ID, models.VulnQueryParams{})
	require.NoError(t, err)
	require.Len(t, vulns, 1)
	assert.Equal(t, "/b", vulns[0].PageURL)
}

func TestUpdateVuln(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db := GetTestDB()
	CleanupTestDB(t, db)

	ctx := context.Background()
	project := createTestProject(t, db, "Test Project")

	created, err := db.CreateVuln(ctx, project.ID, testVulnInput("/login"))
	require.NoError(t, err)

	update := models.VulnInput{
		PageURL:     "/login",
		Selector:    "input[name=q]",
		Type:        "SQLi",
		Severity:    "Critical",
		Status:      "Fixed",
		Description: "now with details",
		Steps:       "updated steps",
		Payload:     "' OR 1=1 --",
	}

	updated, err := db.UpdateVuln(ctx, project.ID, created.ID, update)
	require.NoError(t, err)

	// mutable fields replaced wholesale
	assert.Equal(t, "input[name=q]", updated.Selector)
	assert.Equal(t, "SQLi", updated.Type)
	assert.Equal(t, "Critical", updated.Severity)
	assert.Equal(t, "Fixed", updated.Status)
	assert.Equal(t, "now with details", updated.Description)

	// immutable fields untouched
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.ProjectID, updated.ProjectID)
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))
}

func TestUpdateVuln_NotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db := GetTestDB()
	CleanupTestDB(t, db)

	ctx := context.Background()
	project := createTestProject(t, db, "Test Project")

	_, err := db.UpdateVuln(ctx, project.ID, 999999, testVulnInput("/a"))
	assert.ErrorIs(t, err, ErrVulnNotFound)
}

func TestDeleteVuln_Idempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db := GetTestDB()
	CleanupTestDB(t, db)

	ctx := context.Background()
	project := createTestProject(t, db, "Test Project")

	created, err := db.CreateVuln(ctx, project.ID, testVulnInput("/a"))
	require.NoError(t, err)

	err = db.DeleteVuln(ctx, project.ID, created.ID)
	require.NoError(t, err)

	// second delete of the same id reports not found, not success
	err = db.DeleteVuln(ctx, project.ID, created.ID)
	assert.ErrorIs(t, err, ErrVulnNotFound)

	vulns, err := db.ListVulns(ctx, project.ID, models.VulnQueryParams{})
	require.NoError(t, err)
	assert.Empty(t, vulns)
}

func TestListVulns_TimeRangeFilter(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db := GetTestDB()
	CleanupTestDB(t, db)

	ctx := context.Background()
	project := createTestProject(t, db, "Test Project")

	_, err := db.CreateVuln(ctx, project.ID, testVulnInput("/a"))
	require.NoError(t, err)

	vulns, err := db.ListVulns(ctx, project.ID, models.VulnQueryParams{
		StartTime: "2000-01-01T00:00:00Z",
	})
	require.NoError(t, err)
	assert.Len(t, vulns, 1)

	vulns, err = db.ListVulns(ctx, project.ID, models.VulnQueryParams{
		EndTime: "2000-01-01T00:00:00Z",
	})
	require.NoError(t, err)
	assert.Empty(t, vulns)

	_, err = db.ListVulns(ctx, project.ID, models.VulnQueryParams{
		StartTime: "not-a-timestamp",
	})
	assert.Error(t, err)
}
