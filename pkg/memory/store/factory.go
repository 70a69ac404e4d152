package store

import "fmt"

// NewTranscriptStore 根据配置创建转录档案存储
func NewTranscriptStore(config *Config) (TranscriptStore, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Type {
	case StoreTypeJSONL:
		return NewJSONLTranscriptStore(config.Path)
	case StoreTypeSQLite:
		if config.Path == "" {
			return nil, fmt.Errorf("%w: sqlite store requires a path", ErrInvalidInput)
		}
		return NewSQLiteTranscriptStore(config.Path)
	case StoreTypeMemory, "":
		return NewMemoryTranscriptStore(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, config.Type)
	}
}
