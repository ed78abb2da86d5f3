package export

import "fmt"

// DefaultExporter dispatches Export to the concrete sink's writer. It is
// the only Exporter implementation this module provides; a caller wanting
// a different serialization implements Exporter directly against its own
// Sink type.
type DefaultExporter struct{}

var _ Exporter = DefaultExporter{}

// Export writes result to sink, dispatching on sink's concrete type.
func (DefaultExporter) Export(result Result, sink Sink) error {
	switch s := sink.(type) {
	case SQLiteSink:
		return writeSQLite(result, s)
	case GeoJSONSink:
		return writeGeoJSON(result, s)
	default:
		return fmt.Errorf("export: unsupported sink type %T", sink)
	}
}
