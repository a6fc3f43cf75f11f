package telemetry

import (
	"go.opencensus.io/stats/view"
)

var (
	requestView = &view.View{
		Measure:     requestMeasure,
		Aggregation: view.Count(),
		TagKeys:     requestTags,
	}
	requestDurationView = &view.View{
		Measure:     requestDurationMeasure,
		Aggregation: view.Distribution(5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000),
		TagKeys:     requestTags,
	}
	eventView = &view.View{
		Measure:     eventMeasure,
		Aggregation: view.Count(),
		TagKeys:     eventTags,
	}
	impressionView = &view.View{
		Measure:     impressionMeasure,
		Aggregation: view.Sum(),
		TagKeys:     impressionTags,
	}
)

func getViews() []*view.View {
	return []*view.View{requestView, requestDurationView, eventView, impressionView}
}
