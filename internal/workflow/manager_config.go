package workflow

import "clipforge/internal/queue"

// ConfigureStages registers the concrete stage handlers the workflow will run.
// Probing runs in the foreground lane so newly dropped files are validated
// quickly; the long-running speech and encode stages share the background lane.
func (m *Manager) ConfigureStages(set StageSet) {
	foreground := &laneState{kind: laneForeground, name: "foreground"}
	background := &laneState{kind: laneBackground, name: "background"}

	if set.Prober != nil {
		foreground.stages = append(foreground.stages, pipelineStage{
			name:             "prober",
			handler:          set.Prober,
			startStatus:      queue.StatusPending,
			processingStatus: queue.StatusProbing,
			doneStatus:       queue.StatusProbed,
		})
	}
	analyzerStart := queue.StatusTranscribed
	if set.Transcriber != nil {
		background.stages = append(background.stages, pipelineStage{
			name:             "transcriber",
			handler:          set.Transcriber,
			startStatus:      queue.StatusProbed,
			processingStatus: queue.StatusTranscribing,
			doneStatus:       queue.StatusTranscribed,
		})
	}
	if set.Diarizer != nil {
		background.stages = append(background.stages, pipelineStage{
			name:             "diarizer",
			handler:          set.Diarizer,
			startStatus:      queue.StatusTranscribed,
			processingStatus: queue.StatusDiarizing,
			doneStatus:       queue.StatusDiarized,
		})
		analyzerStart = queue.StatusDiarized
	}
	rendererStart := analyzerStart
	if set.Analyzer != nil {
		background.stages = append(background.stages, pipelineStage{
			name:             "analyzer",
			handler:          set.Analyzer,
			startStatus:      analyzerStart,
			processingStatus: queue.StatusAnalyzing,
			doneStatus:       queue.StatusAnalyzed,
		})
		rendererStart = queue.StatusAnalyzed
	}
	exporterStart := rendererStart
	if set.Renderer != nil {
		background.stages = append(background.stages, pipelineStage{
			name:             "renderer",
			handler:          set.Renderer,
			startStatus:      rendererStart,
			processingStatus: queue.StatusRendering,
			doneStatus:       queue.StatusRendered,
		})
		exporterStart = queue.StatusRendered
	}
	if set.Exporter != nil {
		background.stages = append(background.stages, pipelineStage{
			name:             "exporter",
			handler:          set.Exporter,
			startStatus:      exporterStart,
			processingStatus: queue.StatusExporting,
			doneStatus:       queue.StatusCompleted,
		})
	}

	lanes := make(map[laneKind]*laneState)
	order := make([]laneKind, 0, 2)

	if len(foreground.stages) > 0 {
		foreground.finalize()
		lanes[foreground.kind] = foreground
		order = append(order, foreground.kind)
	}
	if len(background.stages) > 0 {
		background.finalize()
		lanes[background.kind] = background
		order = append(order, background.kind)
	}

	for _, lane := range lanes {
		lane.runReclaimer = len(lane.processingStatuses) > 0
	}

	m.mu.Lock()
	m.lanes = lanes
	m.laneOrder = order
	m.mu.Unlock()
}
