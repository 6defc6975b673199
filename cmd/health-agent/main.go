// Copyright 2026 SAR Project
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package main is the entry point for the SAR health agent service.
//
// The health agent is the medical specialist for Search and Rescue
// missions. It:
// - Aggregates patient health profiles from partial records
// - Extrapolates health status and estimates survival windows
// - Checks drug, food, and disease interactions against drugs.com
// - Generates medical narratives through LLM providers (OpenAI, Gemini, Bedrock)
//
// Usage:
//
//	./health-agent
//
// Environment Variables:
//
//	PORT - HTTP server port (default: 8080)
//	DATABASE_URL - PostgreSQL connection string (optional)
//	REDIS_ADDR - Redis address for interaction caching (optional)
//	OPENAI_API_KEY - OpenAI API key (optional)
//	GOOGLE_API_KEY - Google Gemini API key (optional)
//	BEDROCK_REGION - AWS Bedrock region (optional)
//	MISSION_ID - mission identifier tag
package main

import (
	"log"

	"github.com/Gannon44/sar-project/healthagent"
)

func main() {
	if err := healthagent.Run(); err != nil {
		log.Fatalf("health agent exited: %v", err)
	}
}
