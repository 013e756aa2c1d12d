package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoAnalyzer(t *testing.T) {
	src := []byte(`package demo

import (
	"fmt"
	"strings"
)

type Widget struct{ N int }

func (w *Widget) Render() string {
	if w.N > 0 {
		return strings.Repeat("*", w.N)
	}
	return ""
}

func Print(w *Widget) {
	for i := 0; i < 3; i++ {
		fmt.Println(w.Render())
	}
}
`)

	a := NewGoAnalyzer()
	require.True(t, a.CanAnalyze("demo.go"))

	result, err := a.Analyze("demo.go", src)
	require.NoError(t, err)

	assert.Equal(t, "go", result.Language)
	assert.ElementsMatch(t, []string{"fmt", "strings"}, result.Imports)
	assert.Contains(t, result.Functions, "Widget.Render")
	assert.Contains(t, result.Functions, "Print")
	assert.Contains(t, result.Classes, "Widget")
	assert.Equal(t, 2, result.Complexity, "one if, one for")
	assert.Positive(t, result.LinesOfCode)
}

func TestGoAnalyzerSyntaxErrorNonFatal(t *testing.T) {
	src := []byte("package broken\n\nfunc Incomplete(")

	result, err := NewGoAnalyzer().Analyze("broken.go", src)
	require.NoError(t, err)
	assert.Equal(t, "go", result.Language)
}

func TestScriptAnalyzerPython(t *testing.T) {
	src := []byte(`import os
from collections import deque

class Queue:
    def push(self, item):
        if item is not None:
            self.items.append(item)

def drain(q):
    while q.items:
        q.items.pop()
`)

	a := NewScriptAnalyzer()
	require.True(t, a.CanAnalyze("queue.py"))

	result, err := a.Analyze("queue.py", src)
	require.NoError(t, err)

	assert.Equal(t, "python", result.Language)
	assert.Contains(t, result.Imports, "os")
	assert.Contains(t, result.Imports, "collections")
	assert.Contains(t, result.Classes, "Queue")
	assert.Contains(t, result.Functions, "push")
	assert.Contains(t, result.Functions, "drain")
	assert.Positive(t, result.Complexity)
}

func TestScriptAnalyzerRelativeImportsBecomeDependencies(t *testing.T) {
	src := []byte(`import { helper } from './util/helper';
import express from 'express';

const handler = async (req) => helper(req);
`)

	result, err := NewScriptAnalyzer().Analyze("handler.ts", src)
	require.NoError(t, err)

	assert.Equal(t, "typescript", result.Language)
	assert.Contains(t, result.Imports, "./util/helper")
	assert.Contains(t, result.Imports, "express")
	assert.Equal(t, []string{"./util/helper"}, result.Dependencies)
	assert.Contains(t, result.Functions, "handler")
}

func TestFallbackAnalyzer(t *testing.T) {
	a := NewFallbackAnalyzer()
	assert.True(t, a.CanAnalyze("anything.weird"))

	result, err := a.Analyze("notes.md", []byte("# Title\n\nBody text.\n"))
	require.NoError(t, err)
	assert.Equal(t, "markdown", result.Language)
	assert.Equal(t, 2, result.LinesOfCode)
}

func TestChainOrder(t *testing.T) {
	chain := NewChain()

	goResult, err := chain.Analyze("a.go", []byte("package a\n"))
	require.NoError(t, err)
	assert.Equal(t, "go", goResult.Language)

	mdResult, err := chain.Analyze("a.md", []byte("text\n"))
	require.NoError(t, err)
	assert.Equal(t, "markdown", mdResult.Language)
}
