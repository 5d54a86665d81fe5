package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppPayloadFull(t *testing.T) {
	raw := json.RawMessage(`{
		"570": {
			"success": true,
			"data": {
				"steam_appid": 570,
				"name": "Dota 2",
				"type": "game",
				"is_free": true,
				"metacritic": {"score": 90, "url": "https://..."},
				"recommendations": {"total": 1500000},
				"price_overview": {"currency": "USD", "final": 0},
				"genres": [
					{"id": "1", "description": "Action"},
					{"id": "37", "description": "Free To Play"},
					{"id": "2", "description": "Action"}
				],
				"categories": [
					{"id": 1, "description": "Multi-player"},
					{"id": 2, "description": ""}
				]
			}
		}
	}`)

	meta := ParseAppPayload(raw, 570)
	require.NotNil(t, meta)
	assert.EqualValues(t, 570, meta.AppID)
	assert.Equal(t, "Dota 2", meta.Name)
	assert.Equal(t, "game", meta.Type)
	assert.True(t, meta.IsFree)
	require.NotNil(t, meta.MetacriticScore)
	assert.Equal(t, 90, *meta.MetacriticScore)
	require.NotNil(t, meta.RecommendationsTotal)
	assert.Equal(t, 1500000, *meta.RecommendationsTotal)
	// 保序且不去重，去重交给入库层的name唯一约束
	assert.Equal(t, []string{"Action", "Free To Play", "Action"}, meta.Genres)
	// 空description被过滤
	assert.Equal(t, []string{"Multi-player"}, meta.Categories)
	assert.JSONEq(t, `{"currency":"USD","final":0}`, string(meta.PriceOverview))
}

func TestParseAppPayloadAbsentCases(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"顶层块缺失", `{}`},
		{"success为false", `{"570":{"success":false}}`},
		{"success缺失", `{"570":{"data":{"steam_appid":570,"name":"X"}}}`},
		{"data缺失", `{"570":{"success":true}}`},
		{"data非对象", `{"570":{"success":true,"data":[]}}`},
		{"缺appid", `{"570":{"success":true,"data":{"name":"X"}}}`},
		{"缺name", `{"570":{"success":true,"data":{"steam_appid":570}}}`},
		{"非法JSON", `not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, ParseAppPayload(json.RawMessage(tt.raw), 570), "数据缺口应返回absent而非报错")
		})
	}
}

func TestParseAppPayloadCoercion(t *testing.T) {
	// 数值字段解析失败只置空该字段，不否决整条记录
	raw := json.RawMessage(`{
		"440": {
			"success": true,
			"data": {
				"steam_appid": 440,
				"name": "Team Fortress 2",
				"metacritic": {"score": "not-a-number"},
				"recommendations": {"total": "123456"}
			}
		}
	}`)

	meta := ParseAppPayload(raw, 440)
	require.NotNil(t, meta)
	assert.Nil(t, meta.MetacriticScore)
	require.NotNil(t, meta.RecommendationsTotal, "字符串数字应被宽松转换")
	assert.Equal(t, 123456, *meta.RecommendationsTotal)
}

func TestParseAppPayloadMalformedLists(t *testing.T) {
	// genres/categories混入非对象条目：丢弃该条目，不报错
	raw := json.RawMessage(`{
		"620": {
			"success": true,
			"data": {
				"steam_appid": 620,
				"name": "Portal 2",
				"genres": ["just a string", 42, {"description": "Puzzle"}, null],
				"categories": "not a list"
			}
		}
	}`)

	meta := ParseAppPayload(raw, 620)
	require.NotNil(t, meta)
	assert.Equal(t, []string{"Puzzle"}, meta.Genres)
	assert.Empty(t, meta.Categories)
}
