package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Country mirrors the wire format the explorer UI and the event payloads
// use, which is why the JSON tags are camelCased.
type Country struct {
	ID                  int64    `json:"id"`
	Name                *string  `json:"name"`
	OfficialName        *string  `json:"officialName"`
	NativeNames         []string `json:"nativeNames"`
	IsoCode             *string  `json:"isoCode"`
	Capital             *string  `json:"capital"`
	Demonym             *string  `json:"demonym"`
	Area                *float64 `json:"area"`
	WaterPercent        *float64 `json:"waterPercent"`
	Population          *int64   `json:"population"`
	PopulationDensity   *float64 `json:"populationDensity"`
	CallingCode         *string  `json:"callingCode"`
	InternetTld         *string  `json:"internetTld"`
	DateFormat          *string  `json:"dateFormat"`
	Timezone            *string  `json:"timezone"`
	SummerTimezone      *string  `json:"summerTimezone"`
	Currency            *string  `json:"currency"`
	OfficialLanguages   []string `json:"officialLanguages"`
	RecognizedLanguages []string `json:"recognizedLanguages"`
	FlagURL             *string  `json:"flagUrl"`
	CoatOfArmsURL       *string  `json:"coatOfArmsUrl"`
}

const countryColumns = `id, name, official_name, native_names, iso_code, capital, demonym,
	area, water_percent, population, population_density, calling_code, internet_tld,
	date_format, timezone, summer_timezone, currency, official_languages,
	recognized_languages, flag_url, coat_of_arms_url`

func scanCountry(row pgx.Row) (Country, error) {
	var c Country
	err := row.Scan(
		&c.ID, &c.Name, &c.OfficialName, &c.NativeNames, &c.IsoCode, &c.Capital,
		&c.Demonym, &c.Area, &c.WaterPercent, &c.Population, &c.PopulationDensity,
		&c.CallingCode, &c.InternetTld, &c.DateFormat, &c.Timezone, &c.SummerTimezone,
		&c.Currency, &c.OfficialLanguages, &c.RecognizedLanguages, &c.FlagURL,
		&c.CoatOfArmsURL,
	)
	return c, err
}

// CreateCountryParams carries every column except the generated id. The
// same shape doubles as the update payload via UpdateCountryParams.
type CreateCountryParams struct {
	Name                *string  `json:"name"`
	OfficialName        *string  `json:"officialName"`
	NativeNames         []string `json:"nativeNames"`
	IsoCode             *string  `json:"isoCode"`
	Capital             *string  `json:"capital"`
	Demonym             *string  `json:"demonym"`
	Area                *float64 `json:"area"`
	WaterPercent        *float64 `json:"waterPercent"`
	Population          *int64   `json:"population"`
	PopulationDensity   *float64 `json:"populationDensity"`
	CallingCode         *string  `json:"callingCode"`
	InternetTld         *string  `json:"internetTld"`
	DateFormat          *string  `json:"dateFormat"`
	Timezone            *string  `json:"timezone"`
	SummerTimezone      *string  `json:"summerTimezone"`
	Currency            *string  `json:"currency"`
	OfficialLanguages   []string `json:"officialLanguages"`
	RecognizedLanguages []string `json:"recognizedLanguages"`
	FlagURL             *string  `json:"flagUrl"`
	CoatOfArmsURL       *string  `json:"coatOfArmsUrl"`
}

type UpdateCountryParams struct {
	ID int64 `json:"id"`
	CreateCountryParams
}

func countryArgs(arg CreateCountryParams) []any {
	if arg.NativeNames == nil {
		arg.NativeNames = []string{}
	}
	if arg.OfficialLanguages == nil {
		arg.OfficialLanguages = []string{}
	}
	if arg.RecognizedLanguages == nil {
		arg.RecognizedLanguages = []string{}
	}
	return []any{
		arg.Name, arg.OfficialName, arg.NativeNames, arg.IsoCode, arg.Capital,
		arg.Demonym, arg.Area, arg.WaterPercent, arg.Population, arg.PopulationDensity,
		arg.CallingCode, arg.InternetTld, arg.DateFormat, arg.Timezone,
		arg.SummerTimezone, arg.Currency, arg.OfficialLanguages,
		arg.RecognizedLanguages, arg.FlagURL, arg.CoatOfArmsURL,
	}
}

func (q *Queries) CreateCountry(ctx context.Context, arg CreateCountryParams) (Country, error) {
	row := q.db.QueryRow(ctx,
		`INSERT INTO countries (name, official_name, native_names, iso_code, capital, demonym,
			area, water_percent, population, population_density, calling_code, internet_tld,
			date_format, timezone, summer_timezone, currency, official_languages,
			recognized_languages, flag_url, coat_of_arms_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		 RETURNING `+countryColumns,
		countryArgs(arg)...,
	)
	return scanCountry(row)
}

// GetCountry returns the country with the given id, or pgx.ErrNoRows.
func (q *Queries) GetCountry(ctx context.Context, id int64) (Country, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+countryColumns+` FROM countries WHERE id = $1`, id)
	return scanCountry(row)
}

func (q *Queries) ListCountries(ctx context.Context, limit, offset int) ([]Country, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+countryColumns+` FROM countries ORDER BY id LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	countries := []Country{}
	for rows.Next() {
		c, err := scanCountry(rows)
		if err != nil {
			return nil, err
		}
		countries = append(countries, c)
	}
	return countries, rows.Err()
}

// UpdateCountry overwrites every column of the row. Returns pgx.ErrNoRows
// when the id does not exist.
func (q *Queries) UpdateCountry(ctx context.Context, arg UpdateCountryParams) (Country, error) {
	args := append([]any{arg.ID}, countryArgs(arg.CreateCountryParams)...)
	row := q.db.QueryRow(ctx,
		`UPDATE countries SET name = $2, official_name = $3, native_names = $4, iso_code = $5,
			capital = $6, demonym = $7, area = $8, water_percent = $9, population = $10,
			population_density = $11, calling_code = $12, internet_tld = $13, date_format = $14,
			timezone = $15, summer_timezone = $16, currency = $17, official_languages = $18,
			recognized_languages = $19, flag_url = $20, coat_of_arms_url = $21
		 WHERE id = $1
		 RETURNING `+countryColumns,
		args...,
	)
	return scanCountry(row)
}

func (q *Queries) DeleteCountry(ctx context.Context, id int64) (int64, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM countries WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
