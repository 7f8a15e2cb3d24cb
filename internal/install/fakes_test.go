package install

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/CyberAndrii/setup-steamcmd/internal/runner"
	"github.com/CyberAndrii/setup-steamcmd/internal/toolcache"
)

// recorder collects the calls every fake receives, in order.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	for i, c := range r.calls {
		out[i] = strings.SplitN(c, " ", 2)[0]
	}
	return out
}

type fakeDownloader struct {
	rec *recorder
	err error
}

func (f *fakeDownloader) Download(ctx context.Context, url, dest string) (string, error) {
	f.rec.add("download %s %s", url, dest)
	if f.err != nil {
		return "", f.err
	}
	return dest, nil
}

type fakeExtractor struct {
	rec *recorder
	dir string
	err error
}

func (f *fakeExtractor) ExtractTar(ctx context.Context, archivePath, name string) (string, error) {
	f.rec.add("extractTar %s %s", archivePath, name)
	return f.dir, f.err
}

func (f *fakeExtractor) ExtractZip(ctx context.Context, archivePath, name string) (string, error) {
	f.rec.add("extractZip %s %s", archivePath, name)
	return f.dir, f.err
}

type fakeCache struct {
	rec       *recorder
	found     string
	dest      string
	err       error
	markErr   error
	findKey   toolcache.Key
	dirKey    toolcache.Key
	markedKey toolcache.Key
}

func (f *fakeCache) Find(key toolcache.Key) (string, bool) {
	f.rec.add("find %s", key)
	f.findKey = key
	return f.found, f.found != ""
}

func (f *fakeCache) CacheDir(ctx context.Context, src string, key toolcache.Key) (string, error) {
	f.rec.add("cacheDir %s %s", src, key)
	f.dirKey = key
	if f.err != nil {
		return "", f.err
	}
	return f.dest, nil
}

func (f *fakeCache) MarkComplete(key toolcache.Key) error {
	f.rec.add("markComplete %s", key)
	f.markedKey = key
	return f.markErr
}

type fakeNotifier struct {
	messages []string
}

func (f *fakeNotifier) Info(message string) {
	f.messages = append(f.messages, message)
}

// fakeRunner answers each command line with a scripted exit code. Lines
// that are not scripted exit 0.
type fakeRunner struct {
	rec    *recorder
	codes  map[string]int
	errs   map[string]error
	called []string
}

func (f *fakeRunner) Exec(ctx context.Context, name string, args []string, opts runner.Options) (int, error) {
	line := strings.Join(append([]string{name}, args...), " ")
	f.called = append(f.called, line)
	if f.rec != nil {
		f.rec.add("exec %s", line)
	}
	if err, ok := f.errs[line]; ok {
		return -1, err
	}
	code := f.codes[line]
	if code != 0 && !opts.IgnoreReturnCode {
		return code, &runner.ExitError{Command: name, Code: code}
	}
	return code, nil
}

// harness wires a resolved profile and an Installer to fakes.
type harness struct {
	rec       *recorder
	dl        *fakeDownloader
	extractor *fakeExtractor
	cache     *fakeCache
	run       *fakeRunner
	fs        afero.Fs
	profile   Profile
	installer *Installer
}

func newHarness(raw, cacheDest string, opts ...Option) (*harness, error) {
	rec := &recorder{}
	h := &harness{
		rec:       rec,
		dl:        &fakeDownloader{rec: rec},
		extractor: &fakeExtractor{rec: rec, dir: "/tmp/runner/steamcmd-1"},
		cache:     &fakeCache{rec: rec, dest: cacheDest},
		run:       &fakeRunner{rec: rec, codes: map[string]int{}, errs: map[string]error{}},
		fs:        afero.NewMemMapFs(),
	}

	p, err := Resolve(raw, Services{Extractor: h.extractor, Runner: h.run, FS: h.fs}, opts...)
	if err != nil {
		return nil, err
	}
	h.profile = p

	inst, err := NewInstaller(Config{Profile: p, Downloader: h.dl, ToolCache: h.cache, TempDir: "/tmp/runner"})
	if err != nil {
		return nil, err
	}
	h.installer = inst
	return h, nil
}
