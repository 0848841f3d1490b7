// Copyright (c) 2025, The chronus Authors.
//
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

package defaults

// Request rate limits for chronusd, in requests per second.
const (
	ServerRateLimit      = 100
	ServerRateLimitBurst = 200

	// RecommendRateLimit is the token bucket of /v1/recommendation. Each
	// request shells out to lscpu and evaluates the loaded model.
	RecommendRateLimit      = 2
	RecommendRateLimitBurst = 4
)
