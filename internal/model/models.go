// internal/model/models.go
package model

import (
	"strings"
	"time"

	"github-repo-analyzer/internal/errors"
)

// RepoIdentifier holds the owner and name of a repository.
type RepoIdentifier struct {
	Owner string
	Name  string
}

// ParseRepoRef parses a repository reference into its owner and name.
// It accepts either a full GitHub URL (https://github.com/owner/name)
// or a compact "owner/name" slug.
func ParseRepoRef(ref string) (RepoIdentifier, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(ref), "/")

	parts := strings.Split(trimmed, "/")
	if len(parts) < 2 {
		return RepoIdentifier{}, &errors.ErrInvalidRepoRef{Ref: ref}
	}

	id := RepoIdentifier{Owner: parts[len(parts)-2], Name: parts[len(parts)-1]}
	if id.Owner == "" || id.Name == "" || strings.Contains(id.Owner, "github.com") {
		return RepoIdentifier{}, &errors.ErrInvalidRepoRef{Ref: ref}
	}
	return id, nil
}

// Repository represents the metadata of a GitHub repository.
type Repository struct {
	Owner           string
	Name            string
	Description     string
	StarsCount      int
	ForksCount      int
	OpenIssuesCount int
	WatchersCount   int
	Size            int
	CreatedAt       time.Time
	HTMLURL         string
	AvatarURL       string
	DefaultBranch   string
}

// Commit is the subset of a GitHub commit the analysis needs. A zero
// CommitDate means the upstream committer date was absent or
// unparsable; such commits are excluded from the activity histogram.
type Commit struct {
	Author     string
	Message    string
	CommitDate time.Time
}

// Tree entry types as reported by the GitHub git tree API.
const (
	TreeEntryBlob = "blob"
	TreeEntryTree = "tree"
)

// TreeEntry is one path in a repository's file tree.
type TreeEntry struct {
	Path string
	Type string
}

// Contributor represents one repository contributor.
type Contributor struct {
	Login         string `json:"login"`
	Contributions int    `json:"contributions"`
	AvatarURL     string `json:"avatar_url"`
}

// LanguageStat holds the byte count and share of one language.
type LanguageStat struct {
	Bytes      int     `json:"bytes"`
	Percentage float64 `json:"percentage"`
}

// ActivityBucket is one calendar month of commit activity. Issues and
// PRs are always zero: counting them would need additional, heavily
// rate-limited API calls.
type ActivityBucket struct {
	Month   string `json:"month"`
	Commits int    `json:"commits"`
	Issues  int    `json:"issues"`
	PRs     int    `json:"prs"`
}

// FileTypeStat holds the file count and share of one extension.
type FileTypeStat struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// AnalysisRecord is the canonical analysis entity: repository identity,
// scalar metrics, and the derived structures computed per request.
// Derived structures are returned to the caller but never persisted.
type AnalysisRecord struct {
	ID                int64                   `json:"id"`
	RepoName          string                  `json:"repo_name"`
	RepoURL           string                  `json:"repo_url"`
	Owner             string                  `json:"owner"`
	Stars             int                     `json:"stars"`
	Forks             int                     `json:"forks"`
	TotalCommits      int                     `json:"total_commits"`
	TotalContributors int                     `json:"total_contributors"`
	PrimaryLanguage   string                  `json:"primary_language"`
	AnalyzedAt        time.Time               `json:"analyzed_at"`
	Description       string                  `json:"description"`
	Watchers          int                     `json:"watchers"`
	Size              int                     `json:"size"`
	CreatedAt         string                  `json:"created_at"`
	LastCommitDate    string                  `json:"last_commit_date"`
	BranchesCount     int                     `json:"branches_count"`
	OpenIssues        int                     `json:"open_issues"`
	HTMLURL           string                  `json:"html_url"`
	AvatarURL         string                  `json:"avatar_url"`
	Languages         map[string]LanguageStat `json:"languages"`
	TopContributors   []Contributor           `json:"top_contributors"`
	CommitActivity    []ActivityBucket        `json:"commit_activity"`
	FileStructure     map[string]FileTypeStat `json:"file_structure"`
	MostModifiedFiles []string                `json:"most_modified_files"`
}

// AnalysisSummary is the persisted projection of an AnalysisRecord:
// identity and scalar metrics only.
type AnalysisSummary struct {
	ID                int64     `json:"id"`
	RepoName          string    `json:"repo_name"`
	RepoURL           string    `json:"repo_url"`
	Owner             string    `json:"owner"`
	Stars             int       `json:"stars"`
	Forks             int       `json:"forks"`
	TotalCommits      int       `json:"total_commits"`
	TotalContributors int       `json:"total_contributors"`
	PrimaryLanguage   string    `json:"primary_language"`
	AnalyzedAt        time.Time `json:"analyzed_at"`
}

// Summary derives the persisted projection from a full record.
func (a *AnalysisRecord) Summary() AnalysisSummary {
	return AnalysisSummary{
		ID:                a.ID,
		RepoName:          a.RepoName,
		RepoURL:           a.RepoURL,
		Owner:             a.Owner,
		Stars:             a.Stars,
		Forks:             a.Forks,
		TotalCommits:      a.TotalCommits,
		TotalContributors: a.TotalContributors,
		PrimaryLanguage:   a.PrimaryLanguage,
		AnalyzedAt:        a.AnalyzedAt,
	}
}
