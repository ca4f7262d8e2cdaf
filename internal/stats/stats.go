// internal/stats/stats.go

// Package stats contains the pure aggregation transforms that turn raw
// GitHub responses into the derived structures of an analysis. No I/O
// happens here; every function is deterministic given its inputs.
package stats

import (
	"math"
	"path"
	"sort"
	"time"

	"github-repo-analyzer/internal/model"
)

const (
	topContributorsLimit = 10
	activityMonths       = 8
	monthKeyLayout       = "Jan 2006"
)

// NoExtensionKey groups tree entries whose path carries no file
// extension in the file structure distribution.
const NoExtensionKey = "No extension"

// Languages converts a language byte map into per-language statistics.
// Percentages are rounded to one decimal and are all zero when the
// total byte count is zero.
func Languages(bytesByLanguage map[string]int) map[string]model.LanguageStat {
	if len(bytesByLanguage) == 0 {
		return map[string]model.LanguageStat{}
	}

	totalBytes := 0
	for _, b := range bytesByLanguage {
		totalBytes += b
	}

	out := make(map[string]model.LanguageStat, len(bytesByLanguage))
	for lang, b := range bytesByLanguage {
		pct := 0.0
		if totalBytes > 0 {
			pct = round1(float64(b) / float64(totalBytes) * 100)
		}
		out[lang] = model.LanguageStat{Bytes: b, Percentage: pct}
	}
	return out
}

// PrimaryLanguage returns the language with the highest byte count, or
// an empty string for an empty map. Ties break on language name so the
// result is deterministic.
func PrimaryLanguage(bytesByLanguage map[string]int) string {
	primary := ""
	best := -1
	for lang, b := range bytesByLanguage {
		if b > best || (b == best && lang < primary) {
			primary = lang
			best = b
		}
	}
	return primary
}

// TopContributors returns at most the top ten contributors ordered by
// contribution count descending. The sort is stable: contributors with
// equal counts keep their input order.
func TopContributors(contributors []model.Contributor) []model.Contributor {
	top := make([]model.Contributor, len(contributors))
	copy(top, contributors)

	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Contributions > top[j].Contributions
	})

	if len(top) > topContributorsLimit {
		top = top[:topContributorsLimit]
	}
	return top
}

// CommitActivity buckets commits by calendar month (UTC) and returns
// exactly eight buckets in chronological order, covering the eight
// months ending at now. If that window is entirely empty but older
// commits exist, the eight most recent months with activity are used
// instead, so inactive repositories still show their history; when
// fewer than eight months ever saw activity, the window is re-anchored
// at the latest active month and zero-filled to keep eight entries.
// Commits without a parseable date are skipped. With no commits at all
// the result is the first eight months of the year, all zero.
func CommitActivity(commits []model.Commit, now time.Time) []model.ActivityBucket {
	if len(commits) == 0 {
		placeholders := make([]model.ActivityBucket, 0, activityMonths)
		for m := time.January; m <= time.August; m++ {
			placeholders = append(placeholders, model.ActivityBucket{Month: m.String()[:3]})
		}
		return placeholders
	}

	monthly := make(map[string]int)
	for _, c := range commits {
		if c.CommitDate.IsZero() {
			continue
		}
		monthly[c.CommitDate.UTC().Format(monthKeyLayout)]++
	}

	anchor := monthStart(now.UTC())
	buckets := windowBuckets(monthly, anchor)

	if allZero(buckets) && len(monthly) > 0 {
		buckets = fallbackBuckets(monthly)
	}

	return buckets
}

// fallbackBuckets selects the eight most recent months with activity,
// oldest first. With fewer than eight active months the window is
// re-anchored at the latest active month and zero-filled instead.
func fallbackBuckets(monthly map[string]int) []model.ActivityBucket {
	active := make([]time.Time, 0, len(monthly))
	for key := range monthly {
		m, err := time.Parse(monthKeyLayout, key)
		if err != nil {
			continue
		}
		active = append(active, m)
	}
	sort.Slice(active, func(i, j int) bool { return active[i].Before(active[j]) })

	if len(active) < activityMonths {
		return windowBuckets(monthly, active[len(active)-1])
	}

	recent := active[len(active)-activityMonths:]
	buckets := make([]model.ActivityBucket, 0, activityMonths)
	for _, month := range recent {
		buckets = append(buckets, model.ActivityBucket{
			Month:   month.Format("Jan"),
			Commits: monthly[month.Format(monthKeyLayout)],
		})
	}
	return buckets
}

// windowBuckets builds the eight-month window ending at the given
// month, oldest first.
func windowBuckets(monthly map[string]int, end time.Time) []model.ActivityBucket {
	buckets := make([]model.ActivityBucket, 0, activityMonths)
	for i := activityMonths - 1; i >= 0; i-- {
		month := end.AddDate(0, -i, 0)
		buckets = append(buckets, model.ActivityBucket{
			Month:   month.Format("Jan"),
			Commits: monthly[month.Format(monthKeyLayout)],
		})
	}
	return buckets
}

// FileStructure groups blob entries of a file tree by extension. Only
// blobs count toward the total; directories are ignored.
func FileStructure(entries []model.TreeEntry) map[string]model.FileTypeStat {
	counts := make(map[string]int)
	totalFiles := 0
	for _, e := range entries {
		if e.Type != model.TreeEntryBlob {
			continue
		}
		totalFiles++
		ext := path.Ext(e.Path)
		if ext == "" {
			ext = NoExtensionKey
		}
		counts[ext]++
	}

	out := make(map[string]model.FileTypeStat, len(counts))
	for ext, count := range counts {
		pct := 0.0
		if totalFiles > 0 {
			pct = round1(float64(count) / float64(totalFiles) * 100)
		}
		out[ext] = model.FileTypeStat{Count: count, Percentage: pct}
	}
	return out
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func allZero(buckets []model.ActivityBucket) bool {
	for _, b := range buckets {
		if b.Commits != 0 {
			return false
		}
	}
	return true
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
