// Command lookup-provider is a stand-in vehicle data service for local
// development and end-to-end tests. It serves a small canned fleet and
// deterministic synthetic data for any other well-formed VIN, so tests get
// stable responses without a real provider account.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"hash/fnv"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	contract "lanewise/contracts/lookup"
)

type vehicle struct {
	Year      int
	Make      string
	Model     string
	BodyStyle string
	Value     int
	Safety    int
}

// fleet holds VINs our seed data and demos reference by name.
var fleet = map[string]vehicle{
	"1HGCM82633A004352": {2021, "Honda", "Accord", "sedan", 24500, 5},
	"5YJ3E1EA7KF317000": {2019, "Tesla", "Model 3", "sedan", 31000, 5},
	"1FTFW1ET5DFC10312": {2013, "Ford", "F-150", "pickup", 18750, 4},
	"2T1BURHE5JC014906": {2018, "Toyota", "Corolla", "sedan", 15200, 5},
	"WBA8E9G59GNT43708": {2016, "BMW", "328i", "sedan", 19900, 4},
	"1C4RJFBG4FC625797": {2015, "Jeep", "Grand Cherokee", "suv", 21400, 3},
}

var makes = []string{"Chevrolet", "Nissan", "Subaru", "Hyundai", "Kia", "Mazda", "Volkswagen", "Dodge"}
var models = []string{"Meridian", "Cascade", "Vantage", "Summit", "Horizon", "Pioneer"}
var bodyStyles = []string{"sedan", "suv", "coupe", "hatchback", "pickup"}

func main() {
	addr := flag.String("addr", ":8091", "listen address")
	latency := flag.Duration("latency", 0, "artificial response delay")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	if *latency > 0 {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				time.Sleep(*latency)
				next.ServeHTTP(w, req)
			})
		})
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/v1/vins/{vin}", handleDecodeVIN)
	r.Get("/v1/vins/{vin}/value", handleValue)
	r.Get("/v1/safety/{year}/{make}/{model}", handleSafety)

	logger.Info("mock lookup provider listening", "addr", *addr)
	if err := http.ListenAndServe(*addr, r); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func handleDecodeVIN(w http.ResponseWriter, r *http.Request) {
	vin := strings.ToUpper(chi.URLParam(r, "vin"))
	v, ok := resolve(vin)
	if !ok {
		writeError(w, http.StatusNotFound, "vin_not_found", fmt.Sprintf("no record for VIN %s", vin))
		return
	}
	writeJSON(w, http.StatusOK, contract.VehicleFacts{
		VIN:       vin,
		Year:      v.Year,
		Make:      v.Make,
		Model:     v.Model,
		BodyStyle: v.BodyStyle,
		FetchedAt: time.Now().UTC(),
	})
}

func handleValue(w http.ResponseWriter, r *http.Request) {
	vin := strings.ToUpper(chi.URLParam(r, "vin"))
	v, ok := resolve(vin)
	if !ok {
		writeError(w, http.StatusNotFound, "vin_not_found", fmt.Sprintf("no record for VIN %s", vin))
		return
	}
	writeJSON(w, http.StatusOK, contract.ValueEstimate{
		VIN:       vin,
		Value:     v.Value,
		FetchedAt: time.Now().UTC(),
	})
}

func handleSafety(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1981 {
		writeError(w, http.StatusNotFound, "not_rated", "no safety record for that year")
		return
	}
	mk := chi.URLParam(r, "make")
	model := chi.URLParam(r, "model")

	rating := 0
	for _, v := range fleet {
		if v.Year == year && strings.EqualFold(v.Make, mk) && strings.EqualFold(v.Model, model) {
			rating = v.Safety
			break
		}
	}
	if rating == 0 {
		rating = 1 + int(digest(fmt.Sprintf("%d/%s/%s", year, strings.ToLower(mk), strings.ToLower(model)))%5)
	}
	writeJSON(w, http.StatusOK, contract.SafetyRecord{
		Year:      year,
		Make:      mk,
		Model:     model,
		Rating:    rating,
		FetchedAt: time.Now().UTC(),
	})
}

// resolve returns canned data for known VINs and synthesizes a stable
// vehicle for any other 17-character VIN.
func resolve(vin string) (vehicle, bool) {
	if v, ok := fleet[vin]; ok {
		return v, true
	}
	if len(vin) != 17 {
		return vehicle{}, false
	}
	h := digest(vin)
	return vehicle{
		Year:      2008 + int(h%18),
		Make:      makes[h%uint64(len(makes))],
		Model:     models[(h/7)%uint64(len(models))],
		BodyStyle: bodyStyles[(h/11)%uint64(len(bodyStyles))],
		Value:     8000 + int(h%32000),
		Safety:    1 + int(h%5),
	}, true
}

func digest(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, contract.ErrorResponse{Error: code, Message: message})
}
