package mysql

const upsertListingSQL = `
INSERT INTO listings
  (id, kind, title, city, district, category, status, price, currency, lat, lon, images, details, raw)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  id       = LAST_INSERT_ID(id),
  kind     = VALUES(kind),
  title    = VALUES(title),
  city     = VALUES(city),
  district = VALUES(district),
  category = VALUES(category),
  status   = VALUES(status),
  price    = VALUES(price),
  currency = VALUES(currency),
  lat      = VALUES(lat),
  lon      = VALUES(lon),
  images   = VALUES(images),
  details  = VALUES(details),
  raw      = VALUES(raw),
  updated_at = CURRENT_TIMESTAMP
`

const getListingSQL = `
SELECT id, kind, title, city, district, category, status, price, currency,
       lat, lon, images, details, raw, created_at, updated_at
FROM listings
WHERE id = ?
`

const listingColumns = `id, kind, title, city, district, category, status, price, currency,
       lat, lon, images, details, raw, created_at, updated_at`

// Prefix-grouped completions over four sources; the caller ranks the
// merged set by count.
const suggestionsSQL = `
(SELECT city AS text, 'city' AS type, COUNT(*) AS cnt
   FROM listings WHERE city LIKE CONCAT(?, '%') GROUP BY city)
UNION ALL
(SELECT district, 'district', COUNT(*)
   FROM listings WHERE district LIKE CONCAT(?, '%') AND district <> '' GROUP BY district)
UNION ALL
(SELECT category, 'category', COUNT(*)
   FROM listings WHERE category LIKE CONCAT(?, '%') AND category <> '' GROUP BY category)
UNION ALL
(SELECT title, 'listing', 1
   FROM listings WHERE title LIKE CONCAT(?, '%') ORDER BY id DESC LIMIT 10)
`

const insertSavedSearchSQL = `
INSERT INTO saved_searches (id, user_id, name, criteria, notification_enabled, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

const updateSavedSearchSQL = `
UPDATE saved_searches
SET name = ?, criteria = ?, notification_enabled = ?, updated_at = ?
WHERE id = ? AND user_id = ?
`

const getSavedSearchSQL = `
SELECT id, user_id, name, criteria, notification_enabled, created_at, updated_at
FROM saved_searches
WHERE id = ? AND user_id = ?
`

const listSavedSearchesSQL = `
SELECT id, user_id, name, criteria, notification_enabled, created_at, updated_at
FROM saved_searches
WHERE user_id = ?
ORDER BY created_at, id
`

const deleteSavedSearchSQL = `DELETE FROM saved_searches WHERE id = ? AND user_id = ?`

const addFavoriteSQL = `INSERT IGNORE INTO favorites (listing_id, user_id) VALUES (?, ?)`

const removeFavoriteSQL = `DELETE FROM favorites WHERE listing_id = ? AND user_id = ?`

const favoriteCountSQL = `SELECT COUNT(*) FROM favorites WHERE listing_id = ?`
