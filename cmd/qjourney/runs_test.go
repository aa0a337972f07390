package main

import (
	"testing"
	"time"

	"github.com/san-kum/qjourney/internal/config"
	"github.com/san-kum/qjourney/internal/storage"
)

func TestStepDwell(t *testing.T) {
	rows := []storage.Row{
		{Kind: "step", Step: 0, StepName: "Original Message"},
		{Kind: "step", Time: 2 * time.Second, Step: 1, StepName: "Binary Conversion"},
		{Kind: "stage", Time: 3 * time.Second, Step: 1, Stage: "reveal", Progress: 1, Limit: 5},
		{Kind: "step", Time: 9 * time.Second, Step: 2, StepName: "Huffman Compression"},
	}

	got := StepDwell(rows, 12*time.Second)
	want := []Visit{
		{Step: 0, Name: "Original Message", Entered: 0, Dwell: 2 * time.Second},
		{Step: 1, Name: "Binary Conversion", Entered: 2 * time.Second, Dwell: 7 * time.Second},
		{Step: 2, Name: "Huffman Compression", Entered: 9 * time.Second, Dwell: 3 * time.Second},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d visits, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("visit %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestPosition(t *testing.T) {
	rows := []storage.Row{
		{Step: 0},
		{Step: 1, Progress: 5, Limit: 10},
		{Step: 1, Progress: 10, Limit: 10},
		{Step: 2},
	}
	got := Position(rows)
	want := []float64{0, 1.45, 1.9, 2}
	for i := range want {
		if d := got[i] - want[i]; d > 1e-9 || d < -1e-9 {
			t.Errorf("position %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestAnimationTimeScalesWithPreset(t *testing.T) {
	classic := AnimationTime(config.GetPreset("classic"))
	fast := AnimationTime(config.GetPreset("fast"))
	if classic == 0 {
		t.Fatal("classic preset has no animation time")
	}
	if fast*4 != classic {
		t.Errorf("fast preset should run in a quarter of the time: %v vs %v", fast, classic)
	}
}
