package config

import "sync"

// RenderSettings holds settings the operator can change at runtime.
type RenderSettings struct {
	mu        sync.RWMutex
	fpsLimit  int
	outline   bool
	batchSpan int
}

var globalRenderSettings = &RenderSettings{
	fpsLimit: 120,
	outline:  true,
}

// GetFPSLimit returns the frame cap; 0 means uncapped.
func GetFPSLimit() int {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.fpsLimit
}

// SetFPSLimit sets the frame cap, clamped to [0, 1000].
func SetFPSLimit(fps int) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()

	if fps < 0 {
		fps = 0
	}
	if fps > 1000 {
		fps = 1000
	}
	globalRenderSettings.fpsLimit = fps
}

// GetPickOutline reports whether the picked voxel is outlined.
func GetPickOutline() bool {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.outline
}

// TogglePickOutline flips the outline and returns the new value.
func TogglePickOutline() bool {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.outline = !globalRenderSettings.outline
	return globalRenderSettings.outline
}

// GetBatchSpan returns how many mesh batches are drawn; 0 means all.
func GetBatchSpan() int {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.batchSpan
}

// AdjustBatchSpan moves the drawn batch count by delta within [1, total].
// A span that reaches total again means "all".
func AdjustBatchSpan(delta, total int) int {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()

	span := globalRenderSettings.batchSpan
	if span == 0 || span > total {
		span = total
	}
	span += delta
	if span < 1 {
		span = 1
	}
	if span >= total {
		span = 0
	}
	globalRenderSettings.batchSpan = span
	return span
}
