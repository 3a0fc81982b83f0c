package recipe

const validMarkdown = `## Dark Chocolate Pots
### Ingredients list
    - dark chocolate,200g
    - eggs,3
    - double cream,150ml
    - caster sugar,50g
    - fleur de sel (optional),a pinch
### Method
1. Melt the chocolate in a bowl over simmering water.
2. Whisk the eggs and sugar until pale.
3. Fold everything together and chill for 2 hours.
`

const imperialMarkdown = `## Chocolate Cake
### Ingredients list
    - all-purpose flour,2 cups
    - butter,4 oz
    - saffron,1 pinch
### Method
1. Preheat the oven to 350°F.
3. Bake until the color deepens.
`

const twoRecipesMarkdown = `## Negroni
### Ingredients list
    - gin,25ml
    - vermouth,25ml
    - orange peel (optional),1 strip
### Method
1. Stir over ice.
## Boulevardier
### Ingredients list
    - bourbon,25ml
### Method
1. Stir.
`

const validJSON = "```json\n" + `{"recipes":[{"title":"Gin Fizz","ingredients":[{"name":"gin","measurement":"50ml"},{"name":"lemon juice","measurement":"25ml"},{"name":"sugar syrup","measurement":"15ml"},{"name":"soda water","measurement":"100ml"}],"method":["1. Shake the gin, lemon and syrup hard with ice.","Strain into a chilled glass and top with soda."],"elite_ingredients":[{"name":"yuzu bitters","measurement":"2 dashes","optional":true}]}]}` + "\n```"
