package kakao

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"pet-clinic-booking/internal/platform/httpclient"
	"pet-clinic-booking/internal/ports/places"
)

const searchURL = "https://dapi.kakao.com/v2/local/search/keyword.json"

// Client busca lugares con Kakao Local (keyword search).
type Client struct {
	http    *httpclient.Client
	restKey string
}

func NewClient(restKey string) *Client {
	return &Client{
		http:    httpclient.New(10 * time.Second),
		restKey: restKey,
	}
}

type searchResponse struct {
	Documents []struct {
		ID        string `json:"id"`
		PlaceName string `json:"place_name"`
		RoadAddr  string `json:"road_address_name"`
		Addr      string `json:"address_name"`
		Phone     string `json:"phone"`
		X         string `json:"x"` // lng
		Y         string `json:"y"` // lat
	} `json:"documents"`
}

// SearchKeyword implementa places.Searcher.
func (c *Client) SearchKeyword(ctx context.Context, query string, lat, lng float64, limit int) ([]places.Place, error) {
	if limit <= 0 || limit > 15 {
		limit = 15 // máximo de la API
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("y", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("x", strconv.FormatFloat(lng, 'f', -1, 64))
	params.Set("size", strconv.Itoa(limit))
	params.Set("sort", "distance")

	headers := map[string]string{
		"Authorization": fmt.Sprintf("KakaoAK %s", c.restKey),
	}

	var resp searchResponse
	if err := c.http.GetJSON(ctx, searchURL+"?"+params.Encode(), headers, &resp); err != nil {
		return nil, err
	}

	out := make([]places.Place, 0, len(resp.Documents))
	for _, d := range resp.Documents {
		plat, errLat := strconv.ParseFloat(d.Y, 64)
		plng, errLng := strconv.ParseFloat(d.X, 64)
		if errLat != nil || errLng != nil {
			continue
		}

		addr := d.RoadAddr
		if addr == "" {
			addr = d.Addr
		}

		out = append(out, places.Place{
			ID:      d.ID,
			Name:    d.PlaceName,
			Address: addr,
			Phone:   d.Phone,
			Lat:     plat,
			Lng:     plng,
		})
	}
	return out, nil
}
