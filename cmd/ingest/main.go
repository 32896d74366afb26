// Command ingest loads a catalog of songs and their audio outputs from a
// JSON Lines file, computing each song's semantic embedding, writing the
// song in its own transaction and then its outputs in a separate batched
// write; the two writes are not atomic together.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/fntelecomllc/rankingengine/internal/cache"
	"github.com/fntelecomllc/rankingengine/internal/config"
	"github.com/fntelecomllc/rankingengine/internal/domain/services"
	"github.com/fntelecomllc/rankingengine/internal/logging"
	"github.com/fntelecomllc/rankingengine/internal/models"
	"github.com/fntelecomllc/rankingengine/internal/store"
	"github.com/fntelecomllc/rankingengine/internal/store/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"golang.org/x/sync/errgroup"
)

// ingestOutput is one audio rendition of an ingestRecord.
type ingestOutput struct {
	AudioURL          string `json:"audio_url"`
	SoundsDescription string `json:"sounds_description,omitempty"`
}

// ingestRecord is one line of the JSON Lines catalog file.
type ingestRecord struct {
	Title                     string         `json:"title"`
	Prompt                    string         `json:"prompt,omitempty"`
	Lyrics                    string         `json:"lyrics,omitempty"`
	AcousticPromptDescriptive string         `json:"acoustic_prompt_descriptive,omitempty"`
	BPM                       *int           `json:"bpm,omitempty"`
	MusicalKey                string         `json:"musical_key,omitempty"`
	PrimaryGenre              string         `json:"primary_genre,omitempty"`
	PrimaryMood               string         `json:"primary_mood,omitempty"`
	Format                    string         `json:"format,omitempty"`
	PrimaryContext            string         `json:"primary_context,omitempty"`
	VocalGender               string         `json:"vocal_gender,omitempty"`
	Tags                      []string       `json:"tags,omitempty"`
	ExtendedMetadata          map[string]any `json:"extended_metadata,omitempty"`
	Outputs                   []ingestOutput `json:"outputs"`
}

func main() {
	var (
		filePath    = flag.String("file", "", "path to a JSON Lines catalog file (required)")
		concurrency = flag.Int("concurrency", runtime.NumCPU(), "maximum concurrent song inserts")
		dryRun      = flag.Bool("dry-run", false, "parse and validate the catalog file without writing")
		verbose     = flag.Bool("verbose", false, "log each song as it is ingested")
	)
	flag.Parse()

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "usage: ingest -file <catalog.jsonl>")
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, continuing with process environment")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.NewStdLogger()

	records, err := loadRecords(*filePath)
	if err != nil {
		log.Fatalf("load catalog: %v", err)
	}
	log.Printf("loaded %d records from %s", len(records), *filePath)

	if *dryRun {
		log.Printf("dry run: would ingest %d songs, not connecting to database", len(records))
		os.Exit(0)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}
	defer db.Close()

	// Audio outputs are bulk-upserted over a dedicated pgx pool rather than
	// through the lib/pq-backed sqlx handle, upserting on (song_id,
	// output_ordinal). Every record gets a freshly minted song id, so
	// re-running a load inserts new songs and outputs rather than
	// overwriting those of an earlier run.
	pgxPool, err := pgxpool.New(context.Background(), cfg.Database.DSN)
	if err != nil {
		log.Fatalf("connect pgx pool: %v", err)
	}
	defer pgxPool.Close()

	cacheStore := cache.NewMemoryStore(time.Duration(cfg.Cache.EmbeddingTTLSeconds)*time.Second, 10*time.Minute)
	defer cacheStore.Close()
	embeddings := services.NewEmbeddingProvider(
		cfg.Embedding.BaseURL, cfg.Embedding.APIKey, cfg.Embedding.Model, cfg.Embedding.Dimension,
		cfg.Embedding.TimeoutSeconds, cfg.Embedding.MaxRetries, time.Duration(cfg.Cache.EmbeddingTTLSeconds)*time.Second,
		cacheStore, logger,
	)

	songStore := postgres.NewSongStorePostgres(db)

	ctx := context.Background()
	sem := make(chan struct{}, *concurrency)
	g, gctx := errgroup.WithContext(ctx)

	var succeeded, failed int64
	for i := range records {
		rec := records[i]
		sem <- struct{}{}
		g.Go(func() error {
			defer func() { <-sem }()
			if err := ingestOne(gctx, embeddings, songStore, pgxPool, rec); err != nil {
				atomic.AddInt64(&failed, 1)
				logger.Error(gctx, "ingest.song.failed", err, logging.Fields{"title": rec.Title})
				return nil
			}
			atomic.AddInt64(&succeeded, 1)
			if *verbose {
				log.Printf("ingested %q (%d outputs)", rec.Title, len(rec.Outputs))
			}
			return nil
		})
	}
	_ = g.Wait()

	log.Printf("ingest complete: %d succeeded, %d failed", succeeded, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func loadRecords(path string) ([]ingestRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []ingestRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}
		var rec ingestRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		records = append(records, rec)
	}
	return records, scanner.Err()
}

func ingestOne(ctx context.Context, embeddings *services.EmbeddingProvider, songStore store.SongStore, pgxPool *pgxpool.Pool, rec ingestRecord) error {
	embedText := rec.AcousticPromptDescriptive
	if embedText == "" {
		embedText = rec.Prompt
	}
	if embedText == "" {
		embedText = rec.Title
	}
	vec, err := embeddings.Embed(ctx, embedText)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}

	song := &models.Song{
		ID:               uuid.New(),
		Title:            rec.Title,
		Embedding:        pgvector.NewVector(vec),
		Tags:             rec.Tags,
		ExtendedMetadata: rec.ExtendedMetadata,
		CreatedAt:        time.Now(),
	}
	if rec.Prompt != "" {
		song.Prompt = &rec.Prompt
	}
	if rec.Lyrics != "" {
		song.Lyrics = &rec.Lyrics
	}
	if rec.AcousticPromptDescriptive != "" {
		song.AcousticPromptDescriptive = &rec.AcousticPromptDescriptive
	}
	song.BPM = rec.BPM
	if rec.MusicalKey != "" {
		song.MusicalKey = &rec.MusicalKey
	}
	if rec.PrimaryGenre != "" {
		song.PrimaryGenre = &rec.PrimaryGenre
	}
	if rec.PrimaryMood != "" {
		song.PrimaryMood = &rec.PrimaryMood
	}
	if rec.Format != "" {
		song.Format = &rec.Format
	}
	if rec.PrimaryContext != "" {
		song.PrimaryContext = &rec.PrimaryContext
	}
	if rec.VocalGender != "" {
		song.VocalGender = &rec.VocalGender
	}

	tx, err := songStore.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := songStore.CreateSong(ctx, tx, song); err != nil {
		return fmt.Errorf("create song: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit song: %w", err)
	}

	outputs := make([]*models.AudioOutput, len(rec.Outputs))
	for i, out := range rec.Outputs {
		output := &models.AudioOutput{
			ID:            uuid.New(),
			SongID:        song.ID,
			OutputOrdinal: i,
			AudioURL:      out.AudioURL,
			CreatedAt:     time.Now(),
		}
		if out.SoundsDescription != "" {
			output.SoundsDescription = &out.SoundsDescription
		}
		outputs[i] = output
	}

	if err := postgres.BulkUpsertAudioOutputsPgx(ctx, pgxPool, outputs); err != nil {
		return fmt.Errorf("bulk upsert audio outputs: %w", err)
	}
	return nil
}
