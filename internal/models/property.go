package models

// Property 全局配置项（key-value，value 为字符串或 JSON）
type Property struct {
	Name  string `gorm:"primaryKey" json:"name"`
	Value string `json:"value"`
}

func (Property) TableName() string {
	return "properties"
}

// TelegramConfig Telegram 通知渠道配置（单例，存于 properties）
type TelegramConfig struct {
	Enabled bool   `json:"enabled"`
	Token   string `json:"token"`  // Bot Token
	ChatID  string `json:"chatId"` // 接收告警的会话 ID
}

// MailConfig 邮件通知渠道配置（单例，存于 properties）
type MailConfig struct {
	Enabled  bool   `json:"enabled"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	To       string `json:"to"`
}
