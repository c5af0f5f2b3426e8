package cmd

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"treedelta.dev/pkg/treedelta/internal/domain/matching"
	m "treedelta.dev/pkg/treedelta/internal/model"
	"treedelta.dev/pkg/treedelta/pkg"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "treedelta"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	formatFlagName       = "format"
	parallelFlagName     = "parallel"
	verifyFlagName       = "verify"
	filterFlagName       = "filter"
	saveFlagName         = "save"
	sourceDiffFlagName   = "source-diff"
	noTreesFlagName      = "no-trees"
	labelDiffFlagName    = "label-diff"
	noColorFlagName      = "no-color"
	verboseFlagName      = "verbose"
	minAnchorFlagName    = "min-anchor-size"
	similarityFlagName   = "similarity-threshold"
	labelSimFlagName     = "label-similarity"
	pairRootsFlagName    = "pair-roots"
	matchWorkersFlagName = "match-workers"

	minAnchorSizeKey       = "match.min_anchor_size"
	similarityThresholdKey = "match.similarity_threshold"
	labelSimilarityKey     = "match.label_similarity"
	pairRootsKey           = "match.pair_roots"
	matchWorkersKey        = "match.workers"

	formatKey        = "display.format"
	noTreesKey       = "display.no_trees"
	labelDiffKey     = "display.label_diff"
	noColorKey       = "display.no_color"
	diffParallelKey  = "diff.parallel"
	diffVerifyKey    = "diff.verify"
	diffSpillDirKey  = "diff.spill_dir"
	parseCommentsKey = "parse.comments"

	defaultFormat        = "text"
	defaultDiffParallel  = 4
	defaultDiffVerify    = false
	defaultDiffSpillDir  = ""
	defaultNoTrees       = false
	defaultLabelDiff     = false
	defaultNoColor       = false
	defaultParseComments = false

	envPrefix = "TREEDELTA"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".treedelta.log"
	defaultLogLevel      = "info"
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Debug("no config file loaded", "error", err)
		}
	}
}

func setDefaults() {
	viper.SetDefault(configVersionKey, currentConfigVersion)

	match := matching.DefaultOptions()
	viper.SetDefault(minAnchorSizeKey, match.MinAnchorSize)
	viper.SetDefault(similarityThresholdKey, match.SimilarityThreshold)
	viper.SetDefault(labelSimilarityKey, match.LabelSimilarity)
	viper.SetDefault(pairRootsKey, match.PairRoots)
	viper.SetDefault(matchWorkersKey, match.Workers)

	viper.SetDefault(formatKey, defaultFormat)
	viper.SetDefault(noTreesKey, defaultNoTrees)
	viper.SetDefault(labelDiffKey, defaultLabelDiff)
	viper.SetDefault(diffParallelKey, defaultDiffParallel)
	viper.SetDefault(diffVerifyKey, defaultDiffVerify)
	viper.SetDefault(diffSpillDirKey, defaultDiffSpillDir)
	viper.SetDefault(noColorKey, defaultNoColor)
	viper.SetDefault(parseCommentsKey, defaultParseComments)

	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)
}

// newReportSpill buffers directory diff reports under diff.spill_dir, or the
// system temporary directory when it is empty.
func newReportSpill() (pkg.FileSpill[m.Report], error) {
	return pkg.NewFileSpill[m.Report](afero.NewOsFs(), viper.GetString(diffSpillDirKey))
}

// matchOptions reads the matcher thresholds from flags, env and config.
func matchOptions() matching.Options {
	return matching.Options{
		MinAnchorSize:       viper.GetInt(minAnchorSizeKey),
		SimilarityThreshold: viper.GetFloat64(similarityThresholdKey),
		LabelSimilarity:     viper.GetFloat64(labelSimilarityKey),
		PairRoots:           viper.GetBool(pairRootsKey),
		Workers:             viper.GetInt(matchWorkersKey),
	}
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Numeric slog levels, e.g. -4 for debug.
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger points the default slog logger at a rotating log file.
//
// It logs at the configured level, or at Debug when verbose is set.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	logLevel := parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	if verbose {
		logLevel = slog.LevelDebug
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
