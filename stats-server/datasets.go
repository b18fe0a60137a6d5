package main

import (
	"github.com/carlosmardo/App-Estadisticas/internal/dataset"
	"github.com/carlosmardo/App-Estadisticas/internal/ingest"
)

// ListDatasetsArgs is the input schema for list_datasets (no parameters).
type ListDatasetsArgs struct{}

type ListDatasetsResult struct {
	Datasets []dataset.Entry `json:"datasets"`
}

func buildListDatasets(a *app) ListDatasetsResult {
	return ListDatasetsResult{Datasets: a.datasets.List()}
}

type CompetitionsArgs struct {
	DatasetID string `json:"dataset_id,omitempty" jsonschema:"Dataset id from load_season (default latest)"`
}

// CompetitionsResult lists what a dataset can be filtered by.
type CompetitionsResult struct {
	DatasetID    string         `json:"dataset_id"`
	League       string         `json:"league"`
	Competitions []string       `json:"competitions"`
	Players      []string       `json:"players"`
	Rounds       []ingest.Round `json:"rounds"`
}

func buildCompetitions(a *app, args CompetitionsArgs) (*CompetitionsResult, error) {
	e, err := a.datasets.Resolve(args.DatasetID)
	if err != nil {
		return nil, err
	}
	t := e.Table()
	return &CompetitionsResult{
		DatasetID:    e.ID,
		League:       t.League(),
		Competitions: t.Competitions(),
		Players:      t.Players(),
		Rounds:       t.Rounds(),
	}, nil
}

type DeleteDatasetArgs struct {
	DatasetID string `json:"dataset_id" jsonschema:"Dataset id to drop (required)"`
}

type DeleteDatasetResult struct {
	DatasetID string `json:"dataset_id"`
	Deleted   bool   `json:"deleted"`
}

func buildDeleteDataset(a *app, args DeleteDatasetArgs) DeleteDatasetResult {
	return DeleteDatasetResult{DatasetID: args.DatasetID, Deleted: a.datasets.Delete(args.DatasetID)}
}
