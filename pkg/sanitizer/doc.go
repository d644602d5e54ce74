// Package sanitizer provides the per-value normalization rules applied to customer records.
//
// All normalization functions are idempotent - applying them multiple times produces
// the same result. Functions never fail: values they cannot interpret are either kept
// as-is or reported through a boolean so the caller can mark the cell as missing.
//
// Normalization includes:
//   - Column names: lowercase, spaces to underscores, "st" becomes "state" and "income" becomes "customer_income"
//   - Gender: "female", " f ", "F" become "F"; "Male" becomes "M"; anything else is trimmed and uppercased
//   - States: two-letter US codes (and "CALI") expand to the uppercase state name
//   - Education: anything starting with "B" or "b" becomes "Bachelor"
//   - Vehicle class: values starting with "L" or "u", or containing the word "Sports", become "Luxury"
//   - Numbers: "45%" parses as 45, "Complaint/3/closed" yields 3
package sanitizer
