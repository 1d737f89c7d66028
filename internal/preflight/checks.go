package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"kachef/internal/metadata"
	"kachef/internal/services"
	"kachef/internal/snapshot"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckMetadataMap verifies that the map a consume run reads is present and
// decodes.
func CheckMetadataMap(path string) Result {
	const name = "Metadata map"
	m, err := metadata.Load(path)
	if err != nil {
		detail := err.Error()
		if errors.Is(err, services.ErrNotFound) {
			detail = fmt.Sprintf("%s missing (run `kachef metadata generate`)", path)
		}
		return Result{Name: name, Detail: detail}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d slugs)", path, len(m))}
}

// CheckSnapshotCache reports the cached export. A missing cache only fails
// when caching is the sole source of the run.
func CheckSnapshotCache(path string, useCache bool) Result {
	const name = "Snapshot cache"
	info, err := os.Stat(path)
	switch {
	case err == nil:
		detail := fmt.Sprintf("%s (%d bytes, %s)", path, info.Size(), info.ModTime().UTC().Format(time.RFC3339))
		if !useCache {
			detail += "; ignored, use_cache is off"
		}
		return Result{Name: name, Passed: true, Detail: detail}
	case os.IsNotExist(err):
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s not cached; next run downloads it", path)}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
}

// CheckBucket verifies the bucket lists and holds an export for kalang.
func CheckBucket(ctx context.Context, objects snapshot.ObjectStore, bucket, kalang string) Result {
	const name = "Export bucket"

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	names, err := objects.List(checkCtx, kalang+"-export")
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("gs://%s list failed (%s)", bucket, summarizeNetError(err))}
	}
	latest, ok := snapshot.LatestExport(names, kalang)
	if !ok {
		return Result{Name: name, Detail: fmt.Sprintf("gs://%s has no export for %s", bucket, kalang)}
	}
	return Result{Name: name, Passed: true, Detail: latest}
}

// CheckEndpoint verifies that url answers a GET with a 2xx status. The body
// is not read.
func CheckEndpoint(ctx context.Context, name, url, userAgent string) Result {
	target := strings.TrimSpace(url)
	if target == "" {
		return Result{Name: name, Detail: "missing url"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client := &http.Client{Timeout: 10 * time.Second}
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, target, nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("request failed (%v)", err)}
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("unreachable (%s)", summarizeNetError(err))}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return Result{Name: name, Passed: true, Detail: "Reachable"}
	}
	return Result{Name: name, Detail: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
}

func summarizeNetError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timed out"
	}
	return err.Error()
}
