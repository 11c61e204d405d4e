// Package fetch retrieves assembled genomes and sequencing runs from
// the European Nucleotide Archive. Genome FASTAs come from the
// browser API; read locations are resolved through the portal
// filereport endpoint and both FASTQ ends are downloaded
// concurrently. Transient failures retry with exponential backoff.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/Jeffail/gabs"
	"github.com/cenkalti/backoff"
	"golang.org/x/sync/errgroup"

	"github.com/ncezid-biome/espwAlleleCaller/internal/espw"
	"github.com/ncezid-biome/espwAlleleCaller/internal/logging"
)

const (
	defaultGenomeURL     = "https://www.ebi.ac.uk/ena/browser/api/fasta/%s?download=true&gzip=true"
	defaultFileReportURL = "https://www.ebi.ac.uk/ena/portal/api/filereport?accession=%s&result=read_run&fields=fastq_ftp&format=json"
)

// Options configures the archive client.
type Options struct {
	// GenomeURL is a printf template taking the assembly accession.
	GenomeURL string

	// FileReportURL is a printf template taking the run accession.
	FileReportURL string

	// Timeout bounds each individual HTTP request.
	Timeout time.Duration

	// MaxRetries bounds the backoff retry loop per request.
	MaxRetries uint64

	// Client overrides the HTTP client, nil for a default one.
	Client *http.Client
}

func (o Options) withDefaults() Options {
	if o.GenomeURL == "" {
		o.GenomeURL = defaultGenomeURL
	}
	if o.FileReportURL == "" {
		o.FileReportURL = defaultFileReportURL
	}
	if o.Timeout <= 0 {
		o.Timeout = 15 * time.Minute
	}
	if o.MaxRetries == 0 {
		o.MaxRetries = 4
	}
	return o
}

// Client downloads genomes and read pairs.
type Client struct {
	opts Options
	http *http.Client
	log  logging.Logger
}

func NewClient(opts Options) *Client {
	opts = opts.withDefaults()
	hc := opts.Client
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{opts: opts, http: hc, log: logging.Named("fetch")}
}

// Genome downloads the genome FASTA for an assembly accession into
// dir and returns the local path. The archive serves gzip; the file
// keeps its .gz suffix and is read transparently downstream.
func (c *Client) Genome(ctx context.Context, accession, dir string) (string, error) {
	url := fmt.Sprintf(c.opts.GenomeURL, accession)
	dest := filepath.Join(dir, accession+".fasta.gz")
	if err := c.download(ctx, url, dest); err != nil {
		return "", &espw.DownloadError{Target: "genome " + accession, Err: err}
	}
	c.log.Debug("genome fetched", logging.String("accession", accession))
	return dest, nil
}

// Reads resolves a run accession to its paired FASTQ files and
// downloads both ends into dir. Runs without exactly two ends are
// download errors: the assembler needs a proper pair.
func (c *Client) Reads(ctx context.Context, run, dir string) (string, string, error) {
	urls, err := c.readURLs(ctx, run)
	if err != nil {
		return "", "", &espw.DownloadError{Target: "run " + run, Err: err}
	}

	dests := make([]string, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	for i, u := range urls {
		i, u := i, u
		dests[i] = filepath.Join(dir, path.Base(u))
		g.Go(func() error {
			return c.download(gctx, u, dests[i])
		})
	}
	if err := g.Wait(); err != nil {
		return "", "", &espw.DownloadError{Target: "run " + run, Err: err}
	}
	c.log.Debug("reads fetched", logging.String("run", run))
	return dests[0], dests[1], nil
}

// readURLs queries the filereport endpoint, which answers with a JSON
// array like
//
//	[{"run_accession":"SRR123","fastq_ftp":"host/a_1.fastq.gz;host/a_2.fastq.gz"}]
//
// and returns the two FASTQ URLs with an https scheme attached.
func (c *Client) readURLs(ctx context.Context, run string) ([]string, error) {
	url := fmt.Sprintf(c.opts.FileReportURL, run)

	var body []byte
	err := c.retry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if err := statusErr(resp); err != nil {
			return err
		}
		body, err = io.ReadAll(resp.Body)
		return err
	})
	if err != nil {
		return nil, err
	}

	parsed, err := gabs.ParseJSON(body)
	if err != nil {
		return nil, fmt.Errorf("filereport response: %w", err)
	}
	rows, err := parsed.Children()
	if err != nil || len(rows) == 0 {
		return nil, fmt.Errorf("filereport lists no files for %s", run)
	}
	ftp, ok := rows[0].Path("fastq_ftp").Data().(string)
	if !ok || ftp == "" {
		return nil, fmt.Errorf("filereport row has no fastq_ftp for %s", run)
	}

	parts := strings.Split(ftp, ";")
	if len(parts) != 2 {
		return nil, fmt.Errorf("run %s has %d fastq files, need a pair", run, len(parts))
	}
	urls := make([]string, len(parts))
	for i, p := range parts {
		if strings.Contains(p, "://") {
			urls[i] = p
		} else {
			urls[i] = "https://" + p
		}
	}
	return urls, nil
}

// download streams a URL to a local file, retrying transient
// failures. A partial file from a failed attempt is removed before
// the next one.
func (c *Client) download(ctx context.Context, url, dest string) error {
	return c.retry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if err := statusErr(resp); err != nil {
			return err
		}

		f, err := os.Create(dest)
		if err != nil {
			return backoff.Permanent(err)
		}
		if _, err := io.Copy(f, resp.Body); err != nil {
			_ = f.Close()
			_ = os.Remove(dest)
			return err
		}
		return f.Close()
	})
}

func (c *Client) retry(ctx context.Context, op backoff.Operation) error {
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.opts.MaxRetries), ctx)
	return backoff.Retry(op, b)
}

// statusErr maps HTTP statuses to retry behavior: 404 means the
// accession does not exist and retrying cannot help.
func statusErr(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return backoff.Permanent(fmt.Errorf("%s: %s", resp.Request.URL, resp.Status))
	default:
		return fmt.Errorf("%s: %s", resp.Request.URL, resp.Status)
	}
}
