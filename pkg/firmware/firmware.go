package firmware

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/arduino/go-paths-helper"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/juju/errors"
	"github.com/sirupsen/logrus"

	"github.com/hellodevice/flashhello/pkg/report"
)

const (
	baseURL = "https://raw.githubusercontent.com/markleavitt/HelloDeviceFirmware/main/"
)

// Source is one firmware image and where to fetch it from.
type Source struct {
	File string
	URL  string
}

// Manifest lists the images to fetch, in fetch order.
type Manifest []Source

// DefaultManifest returns the application images published for HelloDevice.
func DefaultManifest() Manifest {
	return Manifest{
		{File: "HelloDevice.ino.bin", URL: baseURL + "HelloDevice.ino.bin"},
		{File: "HelloCell.ino.bin", URL: baseURL + "HelloCell.ino.bin"},
	}
}

// Result is the outcome of fetching one manifest entry.
type Result struct {
	File  string
	URL   string
	Bytes int64
	Err   error
}

// Downloader fetches manifest entries into a working directory.
type Downloader struct {
	Client *http.Client
	Dir    *paths.Path
}

// NewDownloader returns a Downloader that saves files into dir.
func NewDownloader(dir string) *Downloader {
	return &Downloader{
		Client: cleanhttp.DefaultClient(),
		Dir:    paths.New(dir),
	}
}

// Download fetches every entry of m, one attempt each. A failed entry is
// reported and does not stop the others.
func (d *Downloader) Download(ctx context.Context, m Manifest, rep report.Reporter) []Result {
	results := make([]Result, 0, len(m))
	for _, src := range m {
		rep.Line(fmt.Sprintf("Downloading %s...", src.File))
		n, err := d.fetch(ctx, src)
		results = append(results, Result{File: src.File, URL: src.URL, Bytes: n, Err: err})
		if err != nil {
			logrus.WithField("url", src.URL).Errorf("Download of %s failed: %v", src.File, err)
			rep.Error("Download Failed", fmt.Sprintf("Error downloading %s:\n%v", src.File, err))
			continue
		}
		logrus.Infof("Downloaded %s (%d bytes)", src.File, n)
		rep.Line(fmt.Sprintf("Downloaded %s", src.File))
	}
	rep.Line("")
	return results
}

// Failed returns the results that carry an error.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}

func (d *Downloader) fetch(ctx context.Context, src Source) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return 0, errors.Annotatef(err, "cannot build request for %s", src.File)
	}
	resp, err := d.client().Do(req)
	if err != nil {
		return 0, errors.Annotatef(err, "error fetching %s", src.File)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, errors.Errorf("error fetching %s: %s", src.File, resp.Status)
	}

	dir := d.dir()
	if err := dir.MkdirAll(); err != nil {
		return 0, errors.Annotatef(err, "cannot create %s", dir)
	}
	target := dir.Join(src.File)
	part := dir.Join(src.File + ".part")

	f, err := os.Create(part.String())
	if err != nil {
		return 0, errors.Annotatef(err, "cannot create %s", part)
	}
	n, err := io.Copy(f, resp.Body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		part.Remove()
		return 0, errors.Annotatef(err, "error reading %s body", src.File)
	}
	if err := os.Rename(part.String(), target.String()); err != nil {
		part.Remove()
		return 0, errors.Annotatef(err, "cannot replace %s", target)
	}
	return n, nil
}

func (d *Downloader) client() *http.Client {
	if d.Client == nil {
		return cleanhttp.DefaultClient()
	}
	return d.Client
}

func (d *Downloader) dir() *paths.Path {
	if d.Dir == nil {
		return paths.New(".")
	}
	return d.Dir
}
