package common

// Built-in impact labels
const (
	LabelRise = "rise"
	LabelFall = "fall"
)

// Environment variable keys
const (
	EnvConfigFile       = "CONFIG_FILE"
	EnvDataPath         = "DATA_PATH"
	EnvDataFormat       = "DATA_FORMAT"
	EnvStorePath        = "STORE_PATH"
	EnvDataset          = "DATASET"
	EnvRiseLabel        = "RISE_LABEL"
	EnvFallLabel        = "FALL_LABEL"
	EnvShowFallAccuracy = "SHOW_FALL_ACCURACY"
	EnvOutputFormat     = "OUTPUT_FORMAT"
	EnvLogLevel         = "LOG_LEVEL"
	EnvMetricsFile      = "METRICS_FILE"
	EnvHTTPTimeout      = "HTTP_TIMEOUT"
)

// Configuration defaults
const (
	DefaultDataPath     = "2024-1-24-original model.json"
	DefaultDataFormat   = FormatAuto
	DefaultStorePath    = "data"
	DefaultDataset      = "default"
	DefaultOutputFormat = OutputText
	DefaultLogLevel     = "info"
)

// Input formats
const (
	FormatAuto   = "auto"
	FormatJSON   = "json"
	FormatURL    = "url"
	FormatBoltDB = "boltdb"
)

// Output formats
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Common error messages
const (
	ErrMsgLabelsRequired = "rise and fall labels are required"
	ErrMsgLabelsDistinct = "rise and fall labels must differ"
)
