package archive

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// FileInfo describes one captured artifact inside the downloads tree.
type FileInfo struct {
	Name     string    `json:"name"`
	RelPath  string    `json:"path"` // relative to the downloads root, slash-separated
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
	Type     string    `json:"type"` // mhtml, html
}

// Topic groups the files of one main-topic folder.
type Topic struct {
	Name  string
	Files []FileInfo
}

// TabContent models the two tab shapes uniformly: tabs like "assignments"
// keep files directly at the tab level, tabs like "overview" nest them under
// topic folders. Either slice may be empty, both never are for a kept tab.
type TabContent struct {
	Files  []FileInfo
	Topics []Topic
}

// Class is one scanned class folder.
type Class struct {
	FolderName string
	Info       Info
	Tabs       map[string]TabContent
	TabOrder   []string
}

// ScanResult is the full downloads hierarchy plus counters.
type ScanResult struct {
	Classes    []Class
	TotalFiles int
	ByType     map[string]int
}

// reportedExts are the artifact types listed in navigation pages. JSON API
// dumps live next to them but are deliberately skipped.
var reportedExts = map[string]bool{"mhtml": true, "html": true}

// Scan walks the downloads root and builds the class→tab→topic→file
// hierarchy. Folders without the bracket tag are kept (Info zero) so the
// navigation page still lists manually created folders.
func Scan(root string, logger *slog.Logger) (*ScanResult, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read downloads dir: %w", err)
	}

	res := &ScanResult{ByType: map[string]int{}}

	for _, entry := range sortedDirs(entries) {
		class := Class{
			FolderName: entry.Name(),
			Tabs:       map[string]TabContent{},
		}
		if info, ok := ParseFolderName(entry.Name()); ok {
			class.Info = info
		} else {
			class.Info = Info{Name: entry.Name()}
		}

		classPath := filepath.Join(root, entry.Name())
		tabs, err := os.ReadDir(classPath)
		if err != nil {
			logger.Warn("skipping unreadable class folder", "folder", entry.Name(), "error", err)
			continue
		}

		for _, tab := range sortedDirs(tabs) {
			tabPath := filepath.Join(classPath, tab.Name())
			content := scanTab(root, tabPath, tab.Name(), res)
			if len(content.Files) == 0 && len(content.Topics) == 0 {
				continue
			}
			class.Tabs[tab.Name()] = content
			class.TabOrder = append(class.TabOrder, tab.Name())
		}

		if len(class.Tabs) > 0 {
			res.Classes = append(res.Classes, class)
		}
	}

	logger.Info("downloads scan complete",
		"classes", len(res.Classes),
		"files", res.TotalFiles,
		"mhtml", res.ByType["mhtml"],
		"html", res.ByType["html"],
	)
	return res, nil
}

// scanTab reads one tab folder. The assignments tab keeps files directly;
// every other tab nests them under topic folders.
func scanTab(root, tabPath, tabName string, res *ScanResult) TabContent {
	var content TabContent

	entries, err := os.ReadDir(tabPath)
	if err != nil {
		return content
	}

	if tabName == "assignments" {
		content.Files = collectFiles(root, tabPath, entries, res)
		return content
	}

	for _, topic := range sortedDirs(entries) {
		topicPath := filepath.Join(tabPath, topic.Name())
		topicEntries, err := os.ReadDir(topicPath)
		if err != nil {
			continue
		}
		files := collectFiles(root, topicPath, topicEntries, res)
		if len(files) > 0 {
			content.Topics = append(content.Topics, Topic{Name: topic.Name(), Files: files})
		}
	}
	return content
}

func collectFiles(root, dir string, entries []os.DirEntry, res *ScanResult) []FileInfo {
	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(e.Name()), "."))
		if !reportedExts[ext] {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(root, filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Name:     e.Name(),
			RelPath:  filepath.ToSlash(rel),
			Size:     fi.Size(),
			Modified: fi.ModTime(),
			Type:     ext,
		})
		res.TotalFiles++
		res.ByType[ext]++
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files
}

func sortedDirs(entries []os.DirEntry) []os.DirEntry {
	var dirs []os.DirEntry
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e)
		}
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Name() < dirs[j].Name() })
	return dirs
}

// HTMLTitle extracts the <title> of a plain-HTML capture fallback file,
// used when the filename carries no section number pattern.
func HTMLTitle(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	z := html.NewTokenizer(f)
	inTitle := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			return "", fmt.Errorf("no <title> in %s", path)
		case html.StartTagToken:
			name, _ := z.TagName()
			inTitle = string(name) == "title"
		case html.TextToken:
			if inTitle {
				return strings.TrimSpace(string(z.Text())), nil
			}
		case html.EndTagToken:
			inTitle = false
		}
	}
}
