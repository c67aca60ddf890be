package engine

// sql.go - Query text for every stage, rendered for the connected dialect

import (
	"fmt"
	"strconv"

	"github.com/leapstack-labs/crowdstat/pkg/core"
)

// projectColumns projects a base-table row with numeric columns forced to
// float so every driver scans them into float64.
func projectColumns(d *core.Dialect) string {
	return fmt.Sprintf("CAST(id AS BIGINT) AS id, name, category, main_category, country, currency, "+
		"%s AS goal, %s AS pledged, CAST(backers AS BIGINT) AS backers, state",
		d.Float("goal"), d.Float("pledged"))
}

// successCount counts successful rows of the current group.
const successCount = "COUNT(CASE WHEN state = '" + core.StateSuccessful + "' THEN 1 END)"

// rateOf renders successful*100/total rounded to two decimals.
// Both the direct and the rollup queries go through it so they agree exactly.
func rateOf(d *core.Dialect, successful, total string) string {
	return d.Round(fmt.Sprintf("%s * 100 / %s", d.Float(successful), total), 2)
}

// successRate is rateOf over the current group.
func successRate(d *core.Dialect) string {
	return rateOf(d, successCount, "COUNT(*)")
}

func literal(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// --- Inspection ---

func statesSQL(table string) string {
	return fmt.Sprintf("SELECT DISTINCT state FROM %s", table)
}

func countryCountsSQL(table string) string {
	return fmt.Sprintf(`SELECT country, COUNT(*) AS projects
FROM %s
GROUP BY country
ORDER BY projects DESC, country`, table)
}

func nullCountsSQL(table string) string {
	return fmt.Sprintf(`SELECT
    COUNT(*) - COUNT(id) AS id_nulls,
    COUNT(*) - COUNT(name) AS name_nulls,
    COUNT(*) - COUNT(category) AS category_nulls
FROM %s`, table)
}

// --- Cleaning ---

func cleanStatements(table string) []string {
	return []string{
		fmt.Sprintf("DELETE FROM %s WHERE name IS NULL OR goal IS NULL", table),
		fmt.Sprintf("DELETE FROM %s WHERE goal <= 0", table),
		fmt.Sprintf("UPDATE %s SET currency = UPPER(currency) WHERE currency <> UPPER(currency)", table),
	}
}

func violationsSQL(table string) string {
	return fmt.Sprintf(`SELECT COUNT(*) FROM %s
WHERE name IS NULL OR goal IS NULL OR goal <= 0 OR currency <> UPPER(currency)`, table)
}

func countSQL(table string) string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
}

// --- Aggregation ---

func categoryPopularitySQL(table string) string {
	return fmt.Sprintf(`SELECT main_category, COUNT(*) AS projects
FROM %s
GROUP BY main_category
ORDER BY projects DESC, main_category`, table)
}

func avgPledgedSQL(d *core.Dialect, table string) string {
	return fmt.Sprintf(`SELECT main_category, %s AS avg_pledged
FROM %s
GROUP BY main_category
ORDER BY avg_pledged DESC, main_category`, d.Round("AVG(pledged)", 2), table)
}

func successRateSQL(d *core.Dialect, table, key string) string {
	return fmt.Sprintf(`SELECT %[1]s, COUNT(*) AS total_projects, %[2]s AS successful_projects, %[3]s AS success_rate
FROM %[4]s
GROUP BY %[1]s
ORDER BY success_rate DESC, %[1]s`, key, successCount, successRate(d), table)
}

func topFundedSQL(d *core.Dialect, table string, limit int) string {
	return fmt.Sprintf(`SELECT %s
FROM %s
ORDER BY pledged DESC, id
LIMIT %d`, projectColumns(d), table, limit)
}

// lowSuccessSQL filters on the unrounded ratio; rounding only shapes the output.
func lowSuccessSQL(d *core.Dialect, table string, below float64) string {
	return fmt.Sprintf(`SELECT main_category, %[1]s AS avg_pledged, %[2]s AS success_rate
FROM %[3]s
GROUP BY main_category
HAVING %[4]s * 100 / COUNT(*) < %[5]s
ORDER BY avg_pledged DESC, main_category`, d.Round("AVG(pledged)", 2), successRate(d), table, d.Float(successCount), literal(below))
}

func crossTabSQL(d *core.Dialect, table string) string {
	return fmt.Sprintf(`SELECT main_category, country, COUNT(*) AS total_projects, %s AS success_rate
FROM %s
GROUP BY main_category, country
ORDER BY country, success_rate DESC, main_category`, successRate(d), table)
}

// --- Retrieval ---

func topProjectsSQL(d *core.Dialect, table string, limit int) string {
	return fmt.Sprintf(`SELECT name, %s AS pledged
FROM %s
WHERE main_category = %s
ORDER BY pledged DESC, id
LIMIT %d`, d.Float("pledged"), table, d.Placeholder(1), limit)
}

// --- Analytics ---

func rankSQL(d *core.Dialect, table string, filtered bool) string {
	where := ""
	if filtered {
		where = "\nWHERE main_category = " + d.Placeholder(1)
	}
	return fmt.Sprintf(`SELECT %s,
    CAST(RANK() OVER (PARTITION BY main_category ORDER BY pledged DESC) AS BIGINT) AS pledged_rank
FROM %s%s
ORDER BY main_category, pledged_rank, id`, projectColumns(d), table, where)
}

func rollupSQL(d *core.Dialect, table string) string {
	return fmt.Sprintf(`WITH category_totals AS (
    SELECT
        main_category,
        COUNT(*) AS total_count,
        %s AS successful_count
    FROM %s
    GROUP BY main_category
)
SELECT main_category, total_count, successful_count, %s AS success_rate
FROM category_totals
ORDER BY success_rate DESC, main_category`, successCount, table, rateOf(d, "successful_count", "total_count"))
}

// --- Snapshots ---

// fingerprintSQL reads every base-table row in the projectColumns shape.
// No ORDER BY: the checksum is a sum of per-row hashes.
func fingerprintSQL(d *core.Dialect, table string) string {
	return fmt.Sprintf("SELECT %s FROM %s", projectColumns(d), table)
}
