package geodata

import (
	"context"
	"fmt"
	"log"
	"time"
)

const (
	// Default number of features requested per chunk
	CHUNKS_DEFAULT_CHUNK_SIZE = 1000
	// Default delay between chunk requests in milliseconds
	CHUNKS_DEFAULT_REQUEST_DELAY = 50
)

// ChunkProcessor is invoked once per fetched chunk, in offset order.
// totalChunks is -1 when the server did not report a total count.
type ChunkProcessor func(chunk *FeatureCollection, chunkIndex, totalChunks int) error

// ProgressFunc reports cumulative load progress. total is -1 when unknown.
type ProgressFunc func(loaded, total int)

// ChunkedRequest describes a paged feature load against one collection URL
type ChunkedRequest struct {
	URL        string            // Collection items endpoint
	Params     map[string]string // Extra query parameters (bbox, filters)
	ChunkSize  int               // Features per chunk, 0 means default
	DelayMs    int               // Delay between chunks, negative means default
	Processor  ChunkProcessor    // Optional per-chunk callback
	OnProgress ProgressFunc      // Optional progress callback
}

// ChunkedLoader fetches large feature collections in sequential chunks
// using limit/offset paging. A count probe runs first so chunk boundaries
// and progress totals are known before any feature data moves.
type ChunkedLoader struct {
	client *HTTPClientWithRetries
}

// NewChunkedLoader creates a loader on top of the retrying HTTP client
func NewChunkedLoader(client *HTTPClientWithRetries) *ChunkedLoader {
	return &ChunkedLoader{client: client}
}

// FetchCount asks the server how many features match the query without
// transferring feature data. Servers that ignore resulttype=hits return
// features instead of a count; that case reports -1 so callers fall back
// to open-ended paging.
func (cl *ChunkedLoader) FetchCount(ctx context.Context, rawURL string, params map[string]string) (int, error) {
	req, err := NewGeoRequestBuilder(rawURL, "").
		WithParams(params).
		WithLimit(1).
		WithResultTypeHits().
		Build()
	if err != nil {
		return 0, fmt.Errorf("failed to build count request: %v", err)
	}

	body, _, err := cl.client.ExecuteRequest(req.WithContext(ctx))
	if err != nil {
		return 0, err
	}

	fc, err := ParseFeatureCollection(body)
	if err != nil {
		return 0, err
	}

	if fc.NumberMatched > 0 {
		return fc.NumberMatched, nil
	}

	// No numberMatched but features came back: the server ignored the
	// hits request and the total is unknown
	if len(fc.Features) > 0 {
		return -1, nil
	}

	return 0, nil
}

// LoadAll fetches every matching feature chunk by chunk and returns the
// merged collection. Offsets increase strictly per chunk and cancellation
// is checked before each chunk request.
func (cl *ChunkedLoader) LoadAll(ctx context.Context, req ChunkedRequest) (*FeatureCollection, error) {
	chunkSize := req.ChunkSize
	if chunkSize <= 0 {
		chunkSize = CHUNKS_DEFAULT_CHUNK_SIZE
	}

	var delay time.Duration
	if req.DelayMs >= 0 {
		delay = time.Duration(req.DelayMs) * time.Millisecond
	} else {
		delay = CHUNKS_DEFAULT_REQUEST_DELAY * time.Millisecond
	}

	startTime := time.Now()

	total, err := cl.FetchCount(ctx, req.URL, req.Params)
	if err != nil {
		return nil, fmt.Errorf("count probe failed: %w", err)
	}

	if total == 0 {
		log.Printf("ChunkedLoader: No features match query on %s", req.URL)
		return NewFeatureCollection(nil), nil
	}

	totalChunks := -1
	if total > 0 {
		totalChunks = (total + chunkSize - 1) / chunkSize
		log.Printf("ChunkedLoader: Loading %d features in %d chunks of %d from %s",
			total, totalChunks, chunkSize, req.URL)
	} else {
		log.Printf("ChunkedLoader: Loading features in chunks of %d from %s (total unknown)",
			chunkSize, req.URL)
	}

	result := NewFeatureCollection(nil)
	completedChunks := 0

	for chunkIndex := 0; ; chunkIndex++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if chunkIndex > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		offset := chunkIndex * chunkSize
		if total > 0 && offset >= total {
			break
		}

		chunk, err := cl.fetchChunk(ctx, req, chunkSize, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch chunk at offset %d: %w", offset, err)
		}

		if len(chunk.Features) == 0 {
			log.Printf("ChunkedLoader: Got empty chunk at offset %d, stopping", offset)
			break
		}

		result.Append(chunk.Features)
		completedChunks++

		if req.Processor != nil {
			if err := req.Processor(chunk, chunkIndex, totalChunks); err != nil {
				return nil, fmt.Errorf("chunk processor failed at chunk %d: %w", chunkIndex, err)
			}
		}

		if req.OnProgress != nil {
			req.OnProgress(len(result.Features), total)
		}

		if len(chunk.Features) < chunkSize {
			break
		}
	}

	if total > 0 {
		result.NumberMatched = total
	} else {
		result.NumberMatched = len(result.Features)
	}

	totalTime := time.Since(startTime)
	log.Printf("ChunkedLoader: Fetched %d features in %d chunks in %.2fs (%.2f features/sec)",
		len(result.Features), completedChunks, totalTime.Seconds(),
		float64(len(result.Features))/totalTime.Seconds())

	return result, nil
}

// fetchChunk fetches a single chunk of data at the given offset
func (cl *ChunkedLoader) fetchChunk(ctx context.Context, req ChunkedRequest, limit, offset int) (*FeatureCollection, error) {
	chunkStartTime := time.Now()

	httpReq, err := NewGeoRequestBuilder(req.URL, "").
		WithParams(req.Params).
		WithLimit(limit).
		WithOffset(offset).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build chunk request: %v", err)
	}

	body, _, err := cl.client.ExecuteRequest(httpReq.WithContext(ctx))
	if err != nil {
		return nil, err
	}

	chunk, err := ParseFeatureCollection(body)
	if err != nil {
		return nil, err
	}

	log.Printf("ChunkedLoader: Completed chunk at offset %d with %d features in %.2fs",
		offset, len(chunk.Features), time.Since(chunkStartTime).Seconds())

	return chunk, nil
}
