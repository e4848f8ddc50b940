package command

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/snapkeep/internal/cli/connection"
	"github.com/yndnr/snapkeep/internal/cli/output"
	"github.com/yndnr/snapkeep/internal/core/domain"
)

const backupsPath = "/admin/v1/backups"

// BackupCommand returns the backup subcommand group.
func BackupCommand() *cli.Command {
	ownerFlag := &cli.StringFlag{
		Name:  "owner",
		Usage: "Owner scope (tenant) of the backups",
	}

	return &cli.Command{
		Name:  "backup",
		Usage: "Backup and restore commands",
		Subcommands: []*cli.Command{
			{
				Name:    "create",
				Aliases: []string{"snapshot"},
				Usage:   "Capture a new backup",
				Flags: []cli.Flag{
					ownerFlag,
					&cli.StringFlag{
						Name:  "type",
						Usage: "Backup type: full, incremental, manual",
						Value: string(domain.BackupTypeManual),
					},
					&cli.BoolFlag{
						Name:  "encrypt",
						Usage: "Encrypt the backup artifact",
					},
				},
				Action: backupCreate,
			},
			{
				Name:   "list",
				Usage:  "List backups, newest first",
				Flags:  []cli.Flag{ownerFlag},
				Action: backupList,
			},
			{
				Name:      "get",
				Aliases:   []string{"status"},
				Usage:     "Show a backup record",
				ArgsUsage: "<backup-id>",
				Action:    backupGet,
			},
			{
				Name:      "restore",
				Aliases:   []string{"download"},
				Usage:     "Fetch the plaintext snapshot of a backup",
				ArgsUsage: "<backup-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "out",
						Usage: "Write the snapshot to this file instead of stdout",
					},
					&cli.StringFlag{
						Name:  "extract",
						Usage: "Write each captured document into this directory",
					},
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Overwrite existing files",
					},
				},
				Action: backupRestore,
			},
			{
				Name:      "delete",
				Usage:     "Delete a backup and its artifact",
				ArgsUsage: "<backup-id>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Skip confirmation",
					},
				},
				Action: backupDelete,
			},
			{
				Name:  "prune",
				Usage: "Delete all but the newest completed backups",
				Flags: []cli.Flag{
					ownerFlag,
					&cli.IntFlag{
						Name:  "keep",
						Usage: "Completed backups to keep (0 uses the server default)",
					},
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Skip confirmation",
					},
				},
				Action: backupPrune,
			},
			{
				Name:   "stats",
				Usage:  "Show backup counts and total size",
				Action: backupStats,
			},
			{
				Name:  "stale",
				Usage: "List backups stuck in pending or in_progress",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "older-than",
						Usage: "Minimum age of a stale attempt",
						Value: time.Hour,
					},
				},
				Action: backupStale,
			},
		},
	}
}

// backupRow is the table view of a backup record.
type backupRow struct {
	ID         string     `json:"id"`
	OwnerScope string     `json:"owner"`
	Type       string     `json:"type"`
	Status     string     `json:"status"`
	Encrypted  bool       `json:"encrypted"`
	FileSize   int64      `json:"size" table:"bytes"`
	StartedAt  time.Time  `json:"started_at"`
	Completed  *time.Time `json:"completed_at" table:"wide"`
	Checksum   string     `json:"checksum" table:"wide"`
	Error      string     `json:"error" table:"wide"`
}

func toRow(rec *domain.BackupRecord) backupRow {
	return backupRow{
		ID:         rec.ID,
		OwnerScope: rec.OwnerScope,
		Type:       string(rec.Type),
		Status:     string(rec.Status),
		Encrypted:  rec.Encrypted,
		FileSize:   rec.FileSize,
		StartedAt:  rec.StartedAt,
		Completed:  rec.CompletedAt,
		Checksum:   rec.Checksum,
		Error:      rec.Error,
	}
}

func toRows(records []*domain.BackupRecord) []backupRow {
	rows := make([]backupRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, toRow(rec))
	}
	return rows
}

type listResponse struct {
	Items []*domain.BackupRecord `json:"items"`
	Total int                    `json:"total"`
}

func renderRecords(c *cli.Context, resp listResponse) error {
	if structured(c) {
		return render(c, resp)
	}
	if err := render(c, toRows(resp.Items)); err != nil {
		return err
	}
	fmt.Fprintf(stdout(c), "\n%d backup(s)\n", resp.Total)
	return nil
}

func backupID(c *cli.Context) (string, error) {
	id := strings.TrimSpace(c.Args().First())
	if id == "" {
		return "", fmt.Errorf("backup ID is required")
	}
	return id, nil
}

func backupPath(id string) string {
	return backupsPath + "/" + url.PathEscape(id)
}

func backupCreate(c *cli.Context) error {
	typ, err := domain.ParseBackupType(c.String("type"))
	if err != nil {
		return err
	}

	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	var spinner *output.Spinner
	if !structured(c) {
		spinner = output.NewSpinner(stderr(c), "Creating backup...")
		spinner.Start()
	}

	body := map[string]any{
		"owner_scope": c.String("owner"),
		"type":        string(typ),
		"encrypt":     c.Bool("encrypt"),
	}
	resp, err := client.Post(ctx, backupsPath, body)
	if err != nil {
		if spinner != nil {
			spinner.Fail("request failed")
		}
		return fmt.Errorf("request failed: %w", err)
	}

	var rec domain.BackupRecord
	if err := connection.ParseResponse(resp, &rec); err != nil {
		if spinner != nil {
			spinner.Fail("backup failed")
		}
		return err
	}

	if spinner != nil {
		spinner.Success(fmt.Sprintf("Backup %s %s", rec.ID, rec.Status))
		return render(c, toRow(&rec))
	}
	return render(c, &rec)
}

func backupList(c *cli.Context) error {
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	path := backupsPath
	if owner := c.String("owner"); owner != "" {
		path += "?owner_scope=" + url.QueryEscape(owner)
	}

	resp, err := client.Get(ctx, path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result listResponse
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}
	return renderRecords(c, result)
}

func backupGet(c *cli.Context) error {
	id, err := backupID(c)
	if err != nil {
		return err
	}

	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := client.Get(ctx, backupPath(id))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var rec domain.BackupRecord
	if err := connection.ParseResponse(resp, &rec); err != nil {
		return err
	}

	if structured(c) {
		return render(c, &rec)
	}
	return render(c, toRow(&rec))
}

func backupRestore(c *cli.Context) error {
	id, err := backupID(c)
	if err != nil {
		return err
	}
	outPath, extractDir := c.String("out"), c.String("extract")
	if outPath != "" && extractDir != "" {
		return fmt.Errorf("--out and --extract are mutually exclusive")
	}
	force := c.Bool("force")

	if outPath != "" && !force {
		if _, err := os.Stat(outPath); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", outPath)
		}
	}

	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := client.Get(ctx, backupPath(id)+"/content")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := connection.CheckResponse(resp); err != nil {
		return err
	}

	switch {
	case extractDir != "":
		var snap domain.SnapshotDocument
		if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
			return fmt.Errorf("decode snapshot: %w", err)
		}
		written, err := extractSnapshot(&snap, extractDir, force)
		if err != nil {
			return err
		}
		fmt.Fprintf(stderr(c), "Restored %d document(s) into %s\n", written, extractDir)
		return nil

	case outPath != "":
		return downloadTo(c, resp.Body, resp.ContentLength, outPath)

	default:
		_, err := io.Copy(stdout(c), resp.Body)
		return err
	}
}

// downloadTo streams body into path through a temporary file so that an
// interrupted transfer never leaves a truncated snapshot behind.
func downloadTo(c *cli.Context, body io.Reader, size int64, path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapkeep-restore-*")
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	bar := output.NewProgressBar(stderr(c), "Downloading")
	bar.SetTotal(size)

	if _, err := io.Copy(bar.Writer(tmp), body); err != nil {
		tmp.Close()
		return fmt.Errorf("download: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}
	bar.Finish()

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(stderr(c), "Saved snapshot to %s\n", path)
	return nil
}

// extractSnapshot writes every document of snap as <name>.json under dir.
// Document names are confined to dir.
func extractSnapshot(snap *domain.SnapshotDocument, dir string, force bool) (int, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return 0, fmt.Errorf("create %s: %w", dir, err)
	}

	names := make([]string, 0, len(snap.Files))
	for name := range snap.Files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		base := filepath.Base(filepath.Clean("/" + name))
		if base == "/" || base == "." || base != name {
			return 0, fmt.Errorf("unsafe document name %q", name)
		}
		path := filepath.Join(dir, base+".json")

		flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
		if !force {
			flags |= os.O_EXCL
		}
		f, err := os.OpenFile(path, flags, 0o640)
		if err != nil {
			if errors.Is(err, os.ErrExist) {
				return 0, fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			return 0, err
		}
		if _, err := f.Write(snap.Files[name]); err != nil {
			f.Close()
			return 0, err
		}
		if err := f.Close(); err != nil {
			return 0, err
		}
	}
	return len(names), nil
}

func backupDelete(c *cli.Context) error {
	id, err := backupID(c)
	if err != nil {
		return err
	}

	if !c.Bool("force") {
		if !confirmWithInput(stdin(c), stderr(c), fmt.Sprintf("Delete backup %s?", id)) {
			fmt.Fprintln(stderr(c), "Aborted")
			return nil
		}
	}

	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := client.Delete(ctx, backupPath(id))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result struct {
		Deleted bool `json:"deleted"`
	}
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	if structured(c) {
		return render(c, map[string]any{"id": id, "deleted": result.Deleted})
	}
	fmt.Fprintf(stdout(c), "Backup %s deleted\n", id)
	return nil
}

func backupPrune(c *cli.Context) error {
	keep := c.Int("keep")
	if keep < 0 {
		return fmt.Errorf("--keep must not be negative")
	}

	owner := c.String("owner")
	if !c.Bool("force") {
		prompt := "Prune completed backups"
		if owner != "" {
			prompt += " of " + owner
		}
		if keep > 0 {
			prompt += fmt.Sprintf(", keeping the newest %d?", keep)
		} else {
			prompt += " down to the server retention?"
		}
		if !confirmWithInput(stdin(c), stderr(c), prompt) {
			fmt.Fprintln(stderr(c), "Aborted")
			return nil
		}
	}

	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := client.Post(ctx, backupsPath+"/prune", map[string]any{
		"owner_scope": owner,
		"keep":        keep,
	})
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result struct {
		Removed []string `json:"removed"`
		Keep    int      `json:"keep"`
	}
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	if structured(c) {
		return render(c, result)
	}
	for _, id := range result.Removed {
		fmt.Fprintf(stdout(c), "removed %s\n", id)
	}
	fmt.Fprintf(stdout(c), "Pruned %d backup(s), kept newest %d\n", len(result.Removed), result.Keep)
	return nil
}

func backupStats(c *cli.Context) error {
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := client.Get(ctx, backupsPath+"/stats")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var stats domain.BackupStats
	if err := connection.ParseResponse(resp, &stats); err != nil {
		return err
	}

	if structured(c) {
		return render(c, &stats)
	}

	w := stdout(c)
	fmt.Fprintf(w, "Total backups:  %d\n", stats.Total)
	fmt.Fprintf(w, "Total size:     %s\n", formatSize(stats.TotalSize))

	statuses := make([]string, 0, len(stats.ByStatus))
	for s := range stats.ByStatus {
		statuses = append(statuses, string(s))
	}
	sort.Strings(statuses)
	for _, s := range statuses {
		fmt.Fprintf(w, "  %-13s %d\n", s+":", stats.ByStatus[domain.BackupStatus(s)])
	}
	return nil
}

func backupStale(c *cli.Context) error {
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	path := backupsPath + "/stale?older_than=" + url.QueryEscape(c.Duration("older-than").String())
	resp, err := client.Get(ctx, path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result listResponse
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}
	return renderRecords(c, result)
}

// formatSize formats a byte count for display.
func formatSize(b int64) string {
	return output.FormatBytes(b)
}

// confirmWithInput asks a yes/no question on w and reads the answer from r.
// Anything other than y or yes declines.
func confirmWithInput(r io.Reader, w io.Writer, prompt string) bool {
	fmt.Fprintf(w, "%s [y/N]: ", prompt)

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
