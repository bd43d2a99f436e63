package main

import (
	"fmt"
	"log"

	"github.com/cerebrone-ai/video-content-creation-agent/config"
	"github.com/cerebrone-ai/video-content-creation-agent/models"
	"github.com/cerebrone-ai/video-content-creation-agent/routers"
	"github.com/cerebrone-ai/video-content-creation-agent/service"
)

func main() {
	config.InitConfig()
	fmt.Println("Server starting on port", config.AppConfig.Server.Port)
	models.InitDB()
	fmt.Println("Database initialized")

	service.InitQueue()
	fmt.Println("Queue initialized")

	service.InitMinIO()
	fmt.Println("MinIO initialized")

	service.InitStatusCache()
	fmt.Println("Status cache initialized")

	llm, err := service.NewGroqGenerator(config.AppConfig.AI.GroqAPIKey, config.AppConfig.AI.GroqModel)
	if err != nil {
		log.Fatalf("Groq 客户端初始化失败: %v", err)
	}
	media := service.NewFalClient(config.AppConfig.AI.FalBaseURL, config.AppConfig.AI.FalAPIKey)

	// API 层同步调用（描述提炼、同步生图）与后台 worker 共用同一组客户端
	service.LLMClient = llm
	service.MediaClient = media

	processor := service.NewProcessor(llm, media, service.NewMinioStore())
	processor.StartProcessor(5)

	r := routers.InitRouter()
	r.Run(config.AppConfig.Server.Port)
}
