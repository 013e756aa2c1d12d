package chunker_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semidx/semidx/internal/chunker"
	"github.com/semidx/semidx/internal/chunker/languages"
	"github.com/semidx/semidx/pkg/types"
)

const goSource = `package example

import "fmt"

// Greet prints a greeting.
func Greet(name string) {
	fmt.Println("hello", name)
}

type Greeter struct {
	Prefix string
}

func (g *Greeter) Say(name string) {
	fmt.Println(g.Prefix, name)
}
`

func newChunker() *chunker.Chunker {
	return chunker.New(languages.DefaultRegistry())
}

func TestChunkGoFunctions(t *testing.T) {
	c := newChunker()

	ext, err := c.Extract("example.go", []byte(goSource))
	require.NoError(t, err)
	assert.Equal(t, "go", ext.Language)
	require.NotEmpty(t, ext.Chunks)

	var kinds []types.ChunkType
	for _, ch := range ext.Chunks {
		kinds = append(kinds, ch.Type)
		require.NoError(t, ch.Validate())
	}
	assert.Contains(t, kinds, types.ChunkFunction)
	assert.Contains(t, kinds, types.ChunkMethod)
	assert.Contains(t, kinds, types.ChunkTypeDecl)

	names := make(map[string]bool)
	for _, sig := range ext.Signatures {
		names[sig.Name] = true
	}
	assert.True(t, names["Greet"])
	assert.True(t, names["Say"])
	assert.True(t, names["Greeter"])
}

func TestChunkLineNumbersPreserved(t *testing.T) {
	c := newChunker()

	chunks, err := c.Chunk("example.go", []byte(goSource))
	require.NoError(t, err)

	lines := strings.Split(goSource, "\n")
	for _, ch := range chunks {
		got := strings.Join(lines[ch.StartLine-1:ch.EndLine], "\n")
		assert.Equal(t, got, ch.Text, "chunk text must match its claimed line span")
	}
}

func TestChunksOrderedAndNonOverlapping(t *testing.T) {
	c := newChunker()

	chunks, err := c.Chunk("example.go", []byte(goSource))
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		assert.Greater(t, chunks[i].StartLine, chunks[i-1].EndLine,
			"chunks must be ordered by line and non-overlapping")
	}
}

func TestChunkDeterministic(t *testing.T) {
	c := newChunker()

	first, err := c.Chunk("example.go", []byte(goSource))
	require.NoError(t, err)
	second, err := c.Chunk("example.go", []byte(goSource))
	require.NoError(t, err)

	assert.Equal(t, first, second, "identical input must yield byte-identical chunks")
}

func TestChunkPythonClasses(t *testing.T) {
	src := `class Account:
    def __init__(self, owner):
        self.owner = owner

    def deposit(self, amount):
        self.balance += amount


def standalone():
    return 1
`
	c := newChunker()
	ext, err := c.Extract("account.py", []byte(src))
	require.NoError(t, err)
	assert.Equal(t, "python", ext.Language)

	var classChunks, funcChunks int
	for _, ch := range ext.Chunks {
		switch ch.Type {
		case types.ChunkClass:
			classChunks++
		case types.ChunkFunction:
			funcChunks++
		}
	}
	assert.Equal(t, 1, classChunks, "methods collapse into their class chunk")
	assert.Equal(t, 1, funcChunks)
}

func TestChunkUnknownLanguageWholeFile(t *testing.T) {
	content := []byte("# A readme\n\nSome prose.\n")
	c := newChunker()

	chunks, err := c.Chunk("README.md", content)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, types.ChunkFile, chunks[0].Type)
	assert.Equal(t, 1, chunks[0].StartLine)
	assert.Equal(t, string(content), chunks[0].Text)
}

func TestChunkEmptyFile(t *testing.T) {
	c := newChunker()
	chunks, err := c.Chunk("empty.txt", []byte("  \n"))
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestOversizedUnitSplitWithoutOverlap(t *testing.T) {
	var b strings.Builder
	b.WriteString("func Big() {\n")
	for i := 0; i < 400; i++ {
		b.WriteString("\tx := 1\n\t_ = x\n")
	}
	b.WriteString("}\n")
	src := "package big\n\n" + b.String()

	c := newChunker()
	chunks, err := c.Chunk("big.go", []byte(src))
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1, "oversized unit must still be split")

	for i := 1; i < len(chunks); i++ {
		assert.Equal(t, chunks[i-1].EndLine+1, chunks[i].StartLine)
	}
}

func TestChunkTSXComponents(t *testing.T) {
	src := `import React from "react";

interface Props {
	label: string;
}

export function Badge(props: Props) {
	return <span className="badge">{props.label}</span>;
}

const Toolbar = (props: Props) => {
	return (
		<div>
			<Badge label={props.label} />
		</div>
	);
};
`
	c := newChunker()
	ext, err := c.Extract("badge.tsx", []byte(src))
	require.NoError(t, err)
	assert.Equal(t, "tsx", ext.Language)

	names := make(map[string]bool)
	for _, sig := range ext.Signatures {
		names[sig.Name] = true
	}
	assert.True(t, names["Badge"], "JSX components must chunk structurally, not as a whole file")
	assert.True(t, names["Toolbar"])
	assert.True(t, names["Props"])
}
