package config

import (
	"fmt"
	"os"
	"path"
	"sync"
	"time"

	"github.com/bpcoder16/Chestnut/v2/appconfig/env"
	"gopkg.in/yaml.v3"
)

// FileName 配置文件名，位于 Chestnut 配置目录下
const FileName = "powershell.yaml"

// ShellExecutorConfig PowerShell 执行器配置
type ShellExecutorConfig struct {
	Command        string            `yaml:"command"`
	Args           []string          `yaml:"args"`
	Env            map[string]string `yaml:"env"`
	TimeoutSeconds int               `yaml:"timeoutSeconds"`
}

// Timeout 单条命令超时时间
func (c ShellExecutorConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	// EnableValidation 未配置时为 true
	EnableValidation *bool         `yaml:"enableValidation"`
	MaxScriptLength  int           `yaml:"maxScriptLength"`
	AllowedRoots     []string      `yaml:"allowedRoots"`
	Logging          LoggingConfig `yaml:"logging"`
}

// ValidationEnabled 只有显式关闭时才返回 false
func (c SecurityConfig) ValidationEnabled() bool {
	return c.EnableValidation == nil || *c.EnableValidation
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	LogDeniedCommands  bool `yaml:"logDeniedCommands"`
	LogAllowedCommands bool `yaml:"logAllowedCommands"`
}

// RateLimitRule 单个操作的滑动窗口规则
type RateLimitRule struct {
	MaxRequests   int `yaml:"maxRequests"`
	WindowSeconds int `yaml:"windowSeconds"`
}

// Window 窗口时长
func (r RateLimitRule) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

// RedisConfig redis 连接配置
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Enabled bool                     `yaml:"enabled"`
	Backend string                   `yaml:"backend"`
	Redis   RedisConfig              `yaml:"redis"`
	Rules   map[string]RateLimitRule `yaml:"rules"`
}

// Rule 获取规则，不存在时返回默认规则
func (c RateLimitConfig) Rule(key string) RateLimitRule {
	if r, ok := c.Rules[key]; ok && r.MaxRequests > 0 && r.WindowSeconds > 0 {
		return r
	}
	return RateLimitRule{MaxRequests: defaultMaxRequests, WindowSeconds: defaultWindowSeconds}
}

// DiscordConfig Discord HTTP 配置
type DiscordConfig struct {
	BaseURL           string `yaml:"baseURL"`
	TimeoutSeconds    int    `yaml:"timeoutSeconds"`
	MaxRetries        int    `yaml:"maxRetries"`
	RetryWaitMillis   int    `yaml:"retryWaitMillis"`
	MinIntervalMillis int    `yaml:"minIntervalMillis"`
}

// NetcheckConfig 在线检测配置
type NetcheckConfig struct {
	Addresses     []string `yaml:"addresses"`
	TimeoutMillis int      `yaml:"timeoutMillis"`
}

// TaskbarConfig 任务栏配置
type TaskbarConfig struct {
	ConfigPath string `yaml:"configPath"`
}

// Config 统一的配置管理中心
type Config struct {
	Shell     ShellExecutorConfig `yaml:"shell"`
	Security  SecurityConfig      `yaml:"security"`
	RateLimit RateLimitConfig     `yaml:"rateLimit"`
	Discord   DiscordConfig       `yaml:"discord"`
	Netcheck  NetcheckConfig      `yaml:"netcheck"`
	Taskbar   TaskbarConfig       `yaml:"taskbar"`
}

const (
	// PowerShellKey 执行器限流键
	PowerShellKey = "powershell_command"

	defaultMaxRequests    = 10
	defaultWindowSeconds  = 60
	defaultTimeoutSeconds = 600
	defaultMaxScript      = 20000
)

var (
	globalConfig Config
	configOnce   sync.Once
)

// Default 返回全部填充默认值的配置
func Default() Config {
	var c Config
	c.ApplyDefaults()
	return c
}

// Load 读取并解析配置文件
func Load(file string) (Config, error) {
	var c Config
	raw, err := os.ReadFile(file)
	if err != nil {
		return c, fmt.Errorf("read %s: %w", file, err)
	}
	if err = yaml.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("parse %s: %w", file, err)
	}
	c.ApplyDefaults()
	return c, nil
}

// ApplyDefaults 设置默认值
func (c *Config) ApplyDefaults() {
	if c.Shell.Command == "" {
		c.Shell.Command = "powershell"
		c.Shell.Args = []string{"-NoProfile", "-NonInteractive", "-Command"}
	}
	if c.Shell.Env == nil {
		c.Shell.Env = map[string]string{
			"PYTHONIOENCODING": "utf-8",
			"LANG":             "en_US.UTF-8",
		}
	}
	if c.Shell.TimeoutSeconds <= 0 {
		c.Shell.TimeoutSeconds = defaultTimeoutSeconds
	}
	if c.Security.EnableValidation == nil {
		enabled := true
		c.Security.EnableValidation = &enabled
	}
	if c.Security.MaxScriptLength <= 0 {
		c.Security.MaxScriptLength = defaultMaxScript
	}
	if c.RateLimit.Backend == "" {
		c.RateLimit.Backend = "memory"
	}
	if c.RateLimit.Redis.Prefix == "" {
		c.RateLimit.Redis.Prefix = "confutils:ratelimit:"
	}
	if c.RateLimit.Rules == nil {
		c.RateLimit.Rules = map[string]RateLimitRule{}
	}
	if _, ok := c.RateLimit.Rules[PowerShellKey]; !ok {
		c.RateLimit.Rules[PowerShellKey] = RateLimitRule{MaxRequests: defaultMaxRequests, WindowSeconds: defaultWindowSeconds}
	}
	if c.Discord.BaseURL == "" {
		c.Discord.BaseURL = "https://discord.com/api/v10"
	}
	if c.Discord.TimeoutSeconds <= 0 {
		c.Discord.TimeoutSeconds = 30
	}
	if c.Discord.MaxRetries <= 0 {
		c.Discord.MaxRetries = 3
	}
	if c.Discord.RetryWaitMillis <= 0 {
		c.Discord.RetryWaitMillis = 1000
	}
	if len(c.Netcheck.Addresses) == 0 {
		c.Netcheck.Addresses = []string{"8.8.8.8:53", "1.1.1.1:53"}
	}
	if c.Netcheck.TimeoutMillis <= 0 {
		c.Netcheck.TimeoutMillis = 2000
	}
}

// lazyLoadConfig 懒加载配置文件
func lazyLoadConfig() {
	configOnce.Do(func() {
		c, err := Load(path.Join(env.ConfigDirPath(), FileName))
		if err != nil {
			panic("loadConfig " + FileName + " err:" + err.Error())
		}
		globalConfig = c
	})
}

// Get 获取全局配置
func Get() Config {
	lazyLoadConfig()
	return globalConfig
}
