package config

type Config struct {
	LLM       LlmConf       `json:"llm"`
	Market    MarketConf    `json:"market"`
	Scheduler SchedulerConf `json:"scheduler"`
	Auth      AuthConf      `json:"auth"`
	Telegram  TelegramConf  `json:"telegram"`
}

type LlmConf struct {
	BaseURL  string `json:"base_url"`  // LLM API基础URL
	APIKey   string `json:"api_key"`   // LLM API密钥
	Model    string `json:"model"`     // 模型名称，支持逗号分隔的多个模型
	ProxyURL string `json:"proxy_url"` // 代理地址，例如: http://127.0.0.1:7890
}

type MarketConf struct {
	BaseURL string `json:"base_url"` // K线接口地址
	APIKey  string `json:"api_key"`  // K线接口密钥（Basic 认证）
}

type SchedulerConf struct {
	Timezone string `json:"timezone"` // Cron 求值时区，默认 Asia/Shanghai
	LogDir   string `json:"log_dir"`  // 任务日志目录，默认 logs
}

type AuthConf struct {
	AccessKey string `json:"access_key"` // 管理界面访问密钥
}

type TelegramConf struct {
	Enabled bool   `json:"enabled"`
	Token   string `json:"token"`
	ChatID  string `json:"chat_id"`
}
