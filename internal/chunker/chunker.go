package chunker

import (
	"context"
	"fmt"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/semidx/semidx/pkg/types"
)

// maxChunkLines bounds a single chunk; larger units are split at fixed
// line windows (no overlap, so chunks of one file never intersect and
// identical input always yields identical chunk sets).
const maxChunkLines = 200

// Extraction is the combined result of structurally parsing one file.
type Extraction struct {
	Language   string
	Chunks     []types.Chunk
	Signatures []types.Signature
}

// Chunker splits file text into logical chunks: function/class level
// where a language grammar is registered, whole-file otherwise.
type Chunker struct {
	registry *Registry
}

// New creates a Chunker backed by the given registry.
func New(registry *Registry) *Chunker {
	return &Chunker{registry: registry}
}

// Chunk splits a file into chunks. It never returns an empty set for
// non-empty content: when structural parsing finds nothing, the whole
// file becomes one chunk.
func (c *Chunker) Chunk(path string, content []byte) ([]types.Chunk, error) {
	ext, err := c.Extract(path, content)
	if err != nil {
		return nil, err
	}
	return ext.Chunks, nil
}

// Extract parses a file once and returns chunks plus extracted
// signatures. Output is deterministic for identical input.
func (c *Chunker) Extract(path string, content []byte) (*Extraction, error) {
	spec := c.registry.Lookup(path)
	if spec == nil {
		return &Extraction{Chunks: wholeFileChunk(content)}, nil
	}

	units, err := c.parseUnits(spec, content)
	if err != nil {
		return nil, err
	}
	if len(units) == 0 {
		return &Extraction{
			Language: spec.Name,
			Chunks:   wholeFileChunk(content),
		}, nil
	}

	lines := strings.Split(string(content), "\n")

	result := &Extraction{Language: spec.Name}
	for _, u := range units {
		kind := spec.chunkKind(u.nodeType)

		result.Signatures = append(result.Signatures, types.Signature{
			Name:      u.name,
			Kind:      signatureKind(kind),
			Signature: strings.TrimSpace(lineAt(lines, u.startLine)),
			Line:      u.startLine,
		})

		result.Chunks = append(result.Chunks, buildChunks(lines, u, kind)...)
	}

	return result, nil
}

// unit is one captured logical unit before chunk construction.
type unit struct {
	name      string
	nodeType  string
	startLine int
	endLine   int
	startByte uint32
	endByte   uint32
}

// parseUnits runs the language query and returns top-level units,
// deduplicated (nested captures collapse into the outermost) and
// ordered by line.
func (c *Chunker) parseUnits(spec *LanguageSpec, content []byte) ([]unit, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(spec.Language)

	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s source: %w", spec.Name, err)
	}
	defer tree.Close()

	query, err := sitter.NewQuery([]byte(spec.Query), spec.Language)
	if err != nil {
		return nil, fmt.Errorf("compile %s query: %w", spec.Name, err)
	}
	defer query.Close()

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(query, tree.RootNode())

	var units []unit
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}

		var node *sitter.Node
		var name string
		for _, cap := range match.Captures {
			switch query.CaptureNameForId(cap.Index) {
			case "chunk":
				node = cap.Node
			case "name":
				name = cap.Node.Content(content)
			}
		}
		if node == nil {
			continue
		}

		units = append(units, unit{
			name:      name,
			nodeType:  node.Type(),
			startLine: int(node.StartPoint().Row) + 1,
			endLine:   int(node.EndPoint().Row) + 1,
			startByte: node.StartByte(),
			endByte:   node.EndByte(),
		})
	}

	return dedupUnits(units), nil
}

// dedupUnits drops units fully contained in an earlier, larger unit
// (e.g. methods captured inside an already-captured class).
func dedupUnits(units []unit) []unit {
	if len(units) <= 1 {
		return units
	}

	sort.Slice(units, func(i, j int) bool {
		if units[i].startByte != units[j].startByte {
			return units[i].startByte < units[j].startByte
		}
		return (units[i].endByte - units[i].startByte) > (units[j].endByte - units[j].startByte)
	})

	result := units[:0]
	var coveredTo uint32
	for _, u := range units {
		// Skip anything starting inside an already-kept unit; keeping
		// it would produce overlapping chunks.
		if len(result) > 0 && u.startByte < coveredTo {
			continue
		}
		result = append(result, u)
		if u.endByte > coveredTo {
			coveredTo = u.endByte
		}
	}
	return result
}

// buildChunks turns one unit into one or more chunks, splitting units
// longer than maxChunkLines at fixed windows.
func buildChunks(lines []string, u unit, kind types.ChunkType) []types.Chunk {
	start := clamp(u.startLine, 1, len(lines))
	end := clamp(u.endLine, start, len(lines))

	if end-start+1 <= maxChunkLines {
		return []types.Chunk{{
			Text:      strings.Join(lines[start-1:end], "\n"),
			Name:      u.name,
			Type:      kind,
			StartLine: start,
			EndLine:   end,
		}}
	}

	var chunks []types.Chunk
	for from := start; from <= end; from += maxChunkLines {
		to := from + maxChunkLines - 1
		if to > end {
			to = end
		}
		chunks = append(chunks, types.Chunk{
			Text:      strings.Join(lines[from-1:to], "\n"),
			Name:      u.name,
			Type:      kind,
			StartLine: from,
			EndLine:   to,
		})
	}
	return chunks
}

// wholeFileChunk is the fallback for unknown languages and files with
// no captured units. Empty content yields no chunks.
func wholeFileChunk(content []byte) []types.Chunk {
	text := string(content)
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return []types.Chunk{{
		Text:      text,
		Type:      types.ChunkFile,
		StartLine: 1,
		EndLine:   len(strings.Split(text, "\n")),
	}}
}

func lineAt(lines []string, n int) string {
	if n < 1 || n > len(lines) {
		return ""
	}
	return lines[n-1]
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
