package processor

import (
	"context"
	"log"

	"github.com/fieldside/cricket-pipeline-workflow/pkg/dataset"
)

// FilterMatches stamps a season/team filter onto the snapshot flowing through
// the pipeline. The row selection itself is dataset.Filter.Apply, evaluated by
// whoever consumes the snapshot; stamping instead of materializing keeps the
// full match table available downstream (the season trend table and the
// interactive dashboard both need it).
type FilterMatches struct {
	filter     dataset.Filter
	processors []Processor
}

func NewFilterMatches(config map[string]interface{}) (*FilterMatches, error) {
	var filter dataset.Filter
	if season, ok := config["season"].(string); ok {
		filter.Season = season
	}
	if team, ok := config["team"].(string); ok {
		filter.Team = team
	}
	return &FilterMatches{filter: filter}, nil
}

func (p *FilterMatches) Subscribe(processor Processor) {
	p.processors = append(p.processors, processor)
}

func (p *FilterMatches) Process(ctx context.Context, msg Message) error {
	snapshot, err := ExtractSnapshot(msg)
	if err != nil {
		return err
	}

	filter := p.filter
	// A filter already stamped upstream wins for any dimension this
	// processor leaves open.
	if filter.Season == "" {
		filter.Season = snapshot.Filter.Season
	}
	if filter.Team == "" {
		filter.Team = snapshot.Filter.Team
	}
	p.warnUnknown(snapshot.Dataset, filter)

	next := &dataset.Snapshot{Dataset: snapshot.Dataset, Filter: filter}
	for _, proc := range p.processors {
		if err := proc.Process(ctx, Message{Payload: next, Metadata: msg.Metadata}); err != nil {
			return err
		}
	}
	return nil
}

// warnUnknown logs filters that cannot match any row. A zero-row result is
// still a valid report, so this is advisory only.
func (p *FilterMatches) warnUnknown(ds *dataset.Dataset, filter dataset.Filter) {
	if s := filter.Season; s != "" && s != dataset.FilterAll && !contains(ds.Seasons(), s) {
		log.Printf("FilterMatches: season %q not present in match table", s)
	}
	if t := filter.Team; t != "" && t != dataset.FilterAll && !contains(ds.Teams(), t) {
		log.Printf("FilterMatches: team %q not present in match table", t)
	}
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
