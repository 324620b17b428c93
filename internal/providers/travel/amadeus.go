// internal/providers/travel/amadeus.go
package travel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	commonerrors "trip-planner/internal/common/errors"
	"trip-planner/internal/common/httpx"
	"trip-planner/internal/common/logger"
)

// cityCodes maps common city names to IATA city codes so callers can pass
// free-text destinations.
var cityCodes = map[string]string{
	"new york":      "NYC",
	"nyc":           "NYC",
	"new york city": "NYC",
	"paris":         "PAR",
	"london":        "LON",
	"los angeles":   "LAX",
	"lax":           "LAX",
	"san francisco": "SFO",
	"sfo":           "SFO",
	"chicago":       "CHI",
	"miami":         "MIA",
	"boston":        "BOS",
	"seattle":       "SEA",
	"denver":        "DEN",
	"las vegas":     "LAS",
	"atlanta":       "ATL",
	"dallas":        "DFW",
	"houston":       "IAH",
	"phoenix":       "PHX",
	"portland":      "PDX",
	"san diego":     "SAN",
	"monterey":      "MRY",
	"santa barbara": "SBA",
	"washington":    "WAS",
	"philadelphia":  "PHL",
	"montreal":      "YUL",
	"toronto":       "YTO",
	"rome":          "ROM",
	"madrid":        "MAD",
	"barcelona":     "BCN",
	"amsterdam":     "AMS",
	"berlin":        "BER",
	"munich":        "MUC",
	"frankfurt":     "FRA",
	"zurich":        "ZUR",
	"vienna":        "VIE",
	"prague":        "PRG",
	"dublin":        "DUB",
	"tokyo":         "NRT",
	"seoul":         "ICN",
	"hong kong":     "HKG",
	"singapore":     "SIN",
	"bangkok":       "BKK",
	"sydney":        "SYD",
	"melbourne":     "MEL",
	"auckland":      "AKL",
}

// LocationCode resolves a free-text city name to an IATA code. Unknown
// cities fall back to the upper-cased first three letters, which matches the
// lookup behavior of the travel API's own city search.
func LocationCode(location string) string {
	key := strings.ToLower(strings.TrimSpace(location))
	// strip state/country suffixes like "Monterey, CA"
	if idx := strings.Index(key, ","); idx > 0 {
		key = strings.TrimSpace(key[:idx])
	}
	if code, ok := cityCodes[key]; ok {
		return code
	}
	cleaned := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' {
			return r
		}
		return -1
	}, key)
	if len(cleaned) >= 3 {
		return strings.ToUpper(cleaned[:3])
	}
	return strings.ToUpper(cleaned)
}

// AmadeusConfig holds the live travel API settings.
type AmadeusConfig struct {
	BaseURL    string
	APIKey     string
	APISecret  string
	Timeout    time.Duration
	MaxRetries int
}

// AmadeusClient talks to an Amadeus-style travel API. It implements both
// FlightProvider and HotelProvider.
type AmadeusClient struct {
	config *AmadeusConfig
	http   *httpx.Client
	logger logger.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewAmadeusClient(config *AmadeusConfig, log logger.Logger) *AmadeusClient {
	if config.BaseURL == "" {
		config.BaseURL = "https://test.api.amadeus.com"
	}
	if config.Timeout == 0 {
		config.Timeout = 15 * time.Second
	}
	return &AmadeusClient{
		config: config,
		http:   httpx.NewClient(config.Timeout, config.MaxRetries),
		logger: log.WithFields(map[string]interface{}{"provider": "amadeus"}),
	}
}

func (c *AmadeusClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.config.APIKey)
	form.Set("client_secret", c.config.APISecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.BaseURL+"/v1/security/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", commonerrors.NewExternalServiceError("amadeus", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", commonerrors.NewExternalServiceError("amadeus", fmt.Errorf("token status %d", resp.StatusCode))
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := jsonDecode(resp, &body); err != nil {
		return "", err
	}

	c.accessToken = body.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(body.ExpiresIn-30) * time.Second)
	return c.accessToken, nil
}

type flightOffersResponse struct {
	Data []struct {
		Price struct {
			GrandTotal string `json:"grandTotal"`
		} `json:"price"`
		Itineraries []struct {
			Duration string `json:"duration"`
			Segments []struct {
				CarrierCode string `json:"carrierCode"`
			} `json:"segments"`
		} `json:"itineraries"`
	} `json:"data"`
}

// CheapestOffer implements FlightProvider. A failed call returns an
// unavailable offer together with the error; callers decide whether the
// error matters.
func (c *AmadeusClient) CheapestOffer(ctx context.Context, origin, destination, departureDate, returnDate string) (FlightOffer, error) {
	tok, err := c.token(ctx)
	if err != nil {
		return FlightOffer{}, err
	}

	params := url.Values{}
	params.Set("originLocationCode", LocationCode(origin))
	params.Set("destinationLocationCode", LocationCode(destination))
	params.Set("departureDate", departureDate)
	if returnDate != "" {
		params.Set("returnDate", returnDate)
	}
	params.Set("adults", "1")
	params.Set("max", "5")
	params.Set("currencyCode", "USD")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.config.BaseURL+"/v2/shopping/flight-offers?"+params.Encode(), nil)
	if err != nil {
		return FlightOffer{}, err
	}
	req.Header.Set("Authorization", "Bearer "+tok)

	resp, err := c.http.Do(req)
	if err != nil {
		return FlightOffer{}, commonerrors.NewFlightLookupFailedError(destination, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return FlightOffer{}, commonerrors.NewFlightLookupFailedError(destination, fmt.Errorf("status %d", resp.StatusCode))
	}

	var body flightOffersResponse
	if err := jsonDecode(resp, &body); err != nil {
		return FlightOffer{}, err
	}

	best := FlightOffer{}
	for _, offer := range body.Data {
		cost, err := strconv.ParseFloat(offer.Price.GrandTotal, 64)
		if err != nil {
			continue
		}
		if !best.Available || cost < best.Cost {
			best.Available = true
			best.Cost = cost
			if len(offer.Itineraries) > 0 {
				best.Duration = offer.Itineraries[0].Duration
				if len(offer.Itineraries[0].Segments) > 0 {
					best.Airline = offer.Itineraries[0].Segments[0].CarrierCode
				}
			}
		}
	}

	if !best.Available {
		c.logger.Debug("no flight offers", map[string]interface{}{
			"origin":      origin,
			"destination": destination,
		})
	}

	return best, nil
}

type hotelOffersResponse struct {
	Data []struct {
		Hotel struct {
			Name   string  `json:"name"`
			Rating float64 `json:"rating,string"`
		} `json:"hotel"`
		Offers []struct {
			Price struct {
				Total string `json:"total"`
			} `json:"price"`
		} `json:"offers"`
	} `json:"data"`
}

// HotelOffers implements HotelProvider via a separate named method so the
// one client can back both interfaces through thin adapters.
func (c *AmadeusClient) HotelOffers(ctx context.Context, destination, checkIn, checkOut string) (HotelOffer, error) {
	tok, err := c.token(ctx)
	if err != nil {
		return HotelOffer{}, err
	}

	params := url.Values{}
	params.Set("cityCode", LocationCode(destination))
	params.Set("checkInDate", checkIn)
	params.Set("checkOutDate", checkOut)
	params.Set("adults", "1")
	params.Set("currency", "USD")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.config.BaseURL+"/v3/shopping/hotel-offers?"+params.Encode(), nil)
	if err != nil {
		return HotelOffer{}, err
	}
	req.Header.Set("Authorization", "Bearer "+tok)

	resp, err := c.http.Do(req)
	if err != nil {
		return HotelOffer{}, commonerrors.NewHotelLookupFailedError(destination, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return HotelOffer{}, commonerrors.NewHotelLookupFailedError(destination, fmt.Errorf("status %d", resp.StatusCode))
	}

	var body hotelOffersResponse
	if err := jsonDecode(resp, &body); err != nil {
		return HotelOffer{}, err
	}

	nights := nightsBetween(checkIn, checkOut)
	best := HotelOffer{}
	for _, entry := range body.Data {
		for _, offer := range entry.Offers {
			total, err := strconv.ParseFloat(offer.Price.Total, 64)
			if err != nil {
				continue
			}
			perNight := total
			if nights > 0 {
				perNight = total / float64(nights)
			}
			if !best.Available || perNight < best.CostPerNight {
				best.Available = true
				best.CostPerNight = perNight
				best.HotelName = entry.Hotel.Name
				best.Rating = entry.Hotel.Rating
			}
		}
	}

	return best, nil
}

// AmadeusHotelAdapter exposes the hotel side of AmadeusClient as a
// HotelProvider.
type AmadeusHotelAdapter struct {
	Client *AmadeusClient
}

func (a AmadeusHotelAdapter) CheapestOffer(ctx context.Context, destination, checkIn, checkOut string) (HotelOffer, error) {
	return a.Client.HotelOffers(ctx, destination, checkIn, checkOut)
}

func nightsBetween(checkIn, checkOut string) int {
	in, err1 := time.Parse("2006-01-02", checkIn)
	out, err2 := time.Parse("2006-01-02", checkOut)
	if err1 != nil || err2 != nil {
		return 0
	}
	return int(out.Sub(in).Hours() / 24)
}

func jsonDecode(resp *http.Response, out interface{}) error {
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
