package assemble

import (
	"os"
	"sync"

	"go.uber.org/zap"
)

// readLocalFiles reads many local files across a bounded worker pool and
// returns their contents keyed by path. Unreadable files are logged and
// mapped to the empty string.
func readLocalFiles(paths []string, maxWorkers int, logger *zap.Logger) map[string]string {
	type readResult struct {
		path    string
		content string
	}

	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	if maxWorkers > len(paths) {
		maxWorkers = len(paths)
	}

	jobs := make(chan string, len(paths))
	results := make(chan readResult, len(paths))
	var wg sync.WaitGroup

	for w := 0; w < maxWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				data, err := os.ReadFile(path)
				if err != nil {
					logger.Warn("Failed to read file", zap.String("file", path), zap.Error(err))
					results <- readResult{path: path}
					continue
				}
				results <- readResult{path: path, content: string(data)}
			}
		}()
	}

	for _, path := range paths {
		jobs <- path
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	contents := make(map[string]string, len(paths))
	for r := range results {
		contents[r.path] = r.content
	}
	return contents
}
