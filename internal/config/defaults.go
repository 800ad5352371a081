package config

// DefaultExtensions are the file extensions eligible for indexing.
var DefaultExtensions = []string{
	".md", ".txt", ".text", ".pdf", ".csv", ".doc", ".docx", ".xlsx",
	".html", ".htm", ".js", ".ts", ".kt", ".java", ".py", ".go", ".json", ".xml",
}

// DefaultExcludeDirs are directory names pruned from traversal at any
// depth: editor/configuration directories and the store's own data dir.
var DefaultExcludeDirs = []string{".obsidian", ".noteai", ".git"}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Vault.Extensions == nil {
		cfg.Vault.Extensions = DefaultExtensions
	}
	if cfg.Vault.ExcludeDirs == nil {
		cfg.Vault.ExcludeDirs = DefaultExcludeDirs
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = ".noteai/notes.db"
	}
	if cfg.OpenAI.APIKeyEnv == "" {
		cfg.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.OpenAI.EmbeddingModel == "" {
		cfg.OpenAI.EmbeddingModel = "text-embedding-3-small"
	}
	if cfg.OpenAI.EmbeddingDimensions == 0 {
		cfg.OpenAI.EmbeddingDimensions = 1536
	}
	if cfg.OpenAI.ChatModel == "" {
		cfg.OpenAI.ChatModel = "gpt-4o-mini"
	}
	if cfg.OpenAI.EmbeddingCacheSize == 0 {
		cfg.OpenAI.EmbeddingCacheSize = 4096
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 5
	}
	if cfg.Chat.HistorySize == 0 {
		cfg.Chat.HistorySize = 20
	}
}
