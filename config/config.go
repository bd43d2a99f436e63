package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	MySQL struct {
		DSN string `yaml:"dsn"`
	} `yaml:"mysql"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
	} `yaml:"redis"`
	AI struct {
		GroqAPIKey string `yaml:"groq_api_key"`
		GroqModel  string `yaml:"groq_model"`
		FalAPIKey  string `yaml:"fal_api_key"`
		FalBaseURL string `yaml:"fal_base_url"`
	} `yaml:"ai"`
	MinIO struct {
		Endpoint  string `yaml:"endpoint"`
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key"`
		Bucket    string `yaml:"bucket"`
		UseSSL    bool   `yaml:"use_ssl"`
		Domain    string `yaml:"domain"`
	} `yaml:"minio"`
}

var AppConfig *Config

func InitConfig() {
	// .env 优先加载（本地开发时提供 API Key），不存在则忽略
	_ = godotenv.Load()

	f, err := os.Open("config/config.yaml")
	if err != nil {
		log.Fatalf("配置文件读取失败: %v", err)
	}
	defer f.Close()
	decoder := yaml.NewDecoder(f)
	AppConfig = &Config{}
	if err := decoder.Decode(AppConfig); err != nil {
		log.Fatalf("配置文件解析失败: %v", err)
	}

	// 环境变量覆盖配置文件中的密钥
	if v := os.Getenv("GROQ_API_KEY"); v != "" {
		AppConfig.AI.GroqAPIKey = v
	}
	if v := os.Getenv("FAL_API_KEY"); v != "" {
		AppConfig.AI.FalAPIKey = v
	}
	if AppConfig.AI.GroqModel == "" {
		AppConfig.AI.GroqModel = "llama-3.3-70b-versatile"
	}
	if AppConfig.AI.FalBaseURL == "" {
		AppConfig.AI.FalBaseURL = "https://fal.run"
	}
}
